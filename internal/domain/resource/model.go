package resource

import (
	"time"

	"github.com/google/uuid"
)

// Resource is a shared reference item for the committee library: a link,
// an attached document, or both, with free-form notes.
type Resource struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	URL         *string    `db:"url" json:"url,omitempty"`
	FileName    *string    `db:"file_name" json:"file_name,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	CreatedByID *uuid.UUID `db:"created_by_id" json:"created_by_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
