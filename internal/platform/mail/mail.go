// Package mail delivers plain-text notification emails. Delivery is
// explicitly fire-and-forget: the Dispatcher reports failures to a log
// sink and never returns them to the caller, so a broken SMTP relay can
// never block a data mutation.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Sender is the interface for sending a single plain-text message.
type Sender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// Message is one outgoing notification, prepared by a domain service and
// handed to the Dispatcher.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Config holds SMTP connection parameters.
type Config struct {
	Server   string
	Port     int
	Username string
	Password string
	UseTLS   bool // STARTTLS
	UseSSL   bool // implicit TLS
	From     string
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	cfg Config
}

func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, to []string, subject, body string) error {
	if s.cfg.Server == "" || s.cfg.From == "" {
		return errors.New("smtp not configured")
	}
	if len(to) == 0 {
		return errors.New("no recipients")
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(10 * time.Second),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	switch {
	case s.cfg.UseSSL:
		opts = append(opts, gomail.WithSSL())
	case s.cfg.UseTLS:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(s.cfg.Server, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// FailureSink receives delivery failures from the Dispatcher.
type FailureSink interface {
	MailFailed(to []string, subject string, err error)
}

// FailureSinkFunc adapts a function to the FailureSink interface.
type FailureSinkFunc func(to []string, subject string, err error)

func (f FailureSinkFunc) MailFailed(to []string, subject string, err error) {
	f(to, subject, err)
}

// Dispatcher wraps a Sender with best-effort semantics. A nil sender (mail
// disabled) makes every Notify a no-op.
type Dispatcher struct {
	sender Sender
	sink   FailureSink
}

func NewDispatcher(sender Sender, sink FailureSink) *Dispatcher {
	return &Dispatcher{sender: sender, sink: sink}
}

// Enabled reports whether a sender is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.sender != nil
}

// Notify sends a message, routing any failure to the sink. It never
// returns an error and never panics on an unconfigured dispatcher.
func (d *Dispatcher) Notify(ctx context.Context, to []string, subject, body string) {
	if !d.Enabled() || len(to) == 0 {
		return
	}
	if err := d.sender.Send(ctx, to, subject, body); err != nil {
		if d.sink != nil {
			d.sink.MailFailed(to, subject, err)
		}
	}
}

// CollectEmails merges address lists, dropping blanks and duplicates while
// preserving first-seen order.
func CollectEmails(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, addr := range list {
			cleaned := strings.TrimSpace(addr)
			if cleaned == "" || seen[cleaned] {
				continue
			}
			seen[cleaned] = true
			out = append(out, cleaned)
		}
	}
	return out
}

// SplitAddressList parses a comma-separated address field.
func SplitAddressList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MockSender records sent messages for tests.
type MockSender struct {
	mu         sync.Mutex
	calls      []MockCall
	ShouldFail bool
}

// MockCall is one recorded Send.
type MockCall struct {
	To      []string
	Subject string
	Body    string
}

func (m *MockSender) Send(_ context.Context, to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{To: append([]string(nil), to...), Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New("mock send failure")
	}
	return nil
}

// Calls returns a copy of the recorded sends.
func (m *MockSender) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
