// Package notification renders and dispatches outbound clinic messages
// (appointment reminders, expert-review alerts). Delivery goes through
// pluggable sender interfaces; the default sender only logs, since SMS and
// email providers are external collaborators.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Type is the channel used to deliver a notification.
type Type string

const (
	TypeEmail Type = "email"
	TypeSMS   Type = "sms"
)

var ErrTemplateNotFound = errors.New("template not found")

// Notification is a single outbound message.
type Notification struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	Recipient  string            `json:"recipient"`
	Subject    string            `json:"subject,omitempty"`
	Body       string            `json:"body"`
	TemplateID string            `json:"template_id,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	SentAt     *time.Time        `json:"sent_at,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// EmailSender delivers email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Template is a reusable notification template with {{var}} placeholders.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Type    Type   `json:"type"`
}

// TemplateEngine stores templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in clinic
// templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "appointment-reminder",
			Name:    "Appointment Reminder",
			Subject: "Appointment Reminder for {{patient_name}}",
			Body:    "Dear {{patient_name}}, this is a reminder of your appointment on {{date}} at {{time}} with {{doctor}}.",
			Type:    TypeEmail,
		},
		{
			ID:      "analysis-reviewed",
			Name:    "Skin Analysis Reviewed",
			Subject: "Your Skin Analysis Results Are Ready",
			Body:    "Dear {{patient_name}}, a specialist has reviewed your skin analysis from {{date}}. Please log in to view the validated results.",
			Type:    TypeEmail,
		},
		{
			ID:      "expert-review-requested",
			Name:    "Expert Review Requested",
			Subject: "New Skin Analysis Awaiting Review",
			Body:    "A new skin analysis for patient {{patient_pid}} ({{body_part}}) is awaiting your review.",
			Type:    TypeEmail,
		},
		{
			ID:      "prescription-ready",
			Name:    "Prescription Ready",
			Subject: "Your Prescription Is Ready",
			Body:    "Dear {{patient_name}}, your prescription dated {{date}} has been issued by {{doctor}}.",
			Type:    TypeEmail,
		},
	}
	for i := range builtIn {
		e.templates[builtIn[i].ID] = &builtIn[i]
	}
}

// Register adds or replaces a template.
func (e *TemplateEngine) Register(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render fills the template's {{var}} placeholders from data and returns the
// subject and body.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}
	return interpolate(t.Subject, data), interpolate(t.Body, data), nil
}

func interpolate(s string, data map[string]string) string {
	for k, v := range data {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}

// logSender logs instead of delivering; the default in every environment
// without a real provider configured.
type logSender struct {
	logger zerolog.Logger
}

func (s logSender) SendEmail(_ context.Context, to, subject, _ string) error {
	s.logger.Info().Str("to", to).Str("subject", subject).Msg("email notification (log-only sender)")
	return nil
}

func (s logSender) SendSMS(_ context.Context, to, _ string) error {
	s.logger.Info().Str("to", to).Msg("sms notification (log-only sender)")
	return nil
}

// NewLogSender returns a sender that only logs.
func NewLogSender(logger zerolog.Logger) interface {
	EmailSender
	SMSSender
} {
	return logSender{logger: logger}
}

// Dispatcher renders templates and hands the result to the configured
// senders, keeping an in-memory log of what was sent.
type Dispatcher struct {
	engine *TemplateEngine
	email  EmailSender
	sms    SMSSender

	mu   sync.Mutex
	sent []*Notification
}

func NewDispatcher(engine *TemplateEngine, email EmailSender, sms SMSSender) *Dispatcher {
	return &Dispatcher{engine: engine, email: email, sms: sms}
}

// Send renders templateID with data and delivers it to recipient over the
// given channel. The notification record is retained regardless of delivery
// outcome.
func (d *Dispatcher) Send(ctx context.Context, typ Type, recipient, templateID string, data map[string]string) (*Notification, error) {
	subject, body, err := d.engine.Render(templateID, data)
	if err != nil {
		return nil, err
	}

	n := &Notification{
		ID:         uuid.NewString(),
		Type:       typ,
		Recipient:  recipient,
		Subject:    subject,
		Body:       body,
		TemplateID: templateID,
		Data:       data,
		Status:     "pending",
		CreatedAt:  time.Now(),
	}

	switch typ {
	case TypeEmail:
		err = d.email.SendEmail(ctx, recipient, subject, body)
	case TypeSMS:
		err = d.sms.SendSMS(ctx, recipient, body)
	default:
		err = fmt.Errorf("unknown notification type: %s", typ)
	}

	if err != nil {
		n.Status = "failed"
		n.Error = err.Error()
	} else {
		n.Status = "sent"
		now := time.Now()
		n.SentAt = &now
	}

	d.mu.Lock()
	d.sent = append(d.sent, n)
	d.mu.Unlock()

	if err != nil {
		return n, err
	}
	return n, nil
}

// History returns a copy of the dispatch log.
func (d *Dispatcher) History() []*Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Notification, len(d.sent))
	copy(out, d.sent)
	return out
}
