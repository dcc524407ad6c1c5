// Package uploads stores user-supplied files on local disk under a single
// configured directory, with sanitized deterministic names.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrExtension is returned when a file's extension is not in the allow
// list for its upload kind.
var ErrExtension = errors.New("file extension not allowed")

var (
	reportExts     = map[string]bool{".pdf": true}
	attachmentExts = map[string]bool{".pdf": true, ".png": true, ".jpg": true, ".jpeg": true}
)

// Store saves and serves files under a base directory.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the base directory.
func (s *Store) Dir() string { return s.dir }

// SaveReport stores a study report. Only PDF files are accepted.
func (s *Store) SaveReport(fh *multipart.FileHeader, kind, id string) (string, error) {
	return s.save(fh, kind, id, "", reportExts)
}

// SaveAttachment stores a patient-level document (genograms, resources).
// PDF and common image formats are accepted.
func (s *Store) SaveAttachment(fh *multipart.FileHeader, kind, id, label string) (string, error) {
	return s.save(fh, kind, id, label, attachmentExts)
}

func (s *Store) save(fh *multipart.FileHeader, kind, id, label string, allowed map[string]bool) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowed[ext] {
		return "", ErrExtension
	}

	name := fmt.Sprintf("%s_%s_%d", sanitize(kind), sanitize(id), time.Now().Unix())
	if label != "" {
		name += "_" + sanitize(label)
	}
	name += ext

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return name, nil
}

// Path resolves a stored name to its absolute path, rejecting names that
// escape the base directory.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", errors.New("invalid file name")
	}
	p := filepath.Join(s.dir, name)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("stat %s: %w", name, err)
	}
	return p, nil
}

// Remove deletes a stored file. Removal is best effort: a missing or
// locked file is logged and ignored so record deletion never fails on
// orphaned disk state.
func (s *Store) Remove(name string) {
	if name == "" || name != filepath.Base(name) {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", name).Msg("could not remove stored file")
	}
}

// sanitize keeps letters, digits, dash, underscore and dot, replacing
// everything else with an underscore.
func sanitize(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
