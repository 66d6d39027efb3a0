package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRenderBuiltInTemplate(t *testing.T) {
	e := NewTemplateEngine()
	subject, body, err := e.Render("appointment-reminder", map[string]string{
		"patient_name": "Jane Doe",
		"date":         "2025-03-04",
		"time":         "10:30",
		"doctor":       "Dr. Patel",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(subject, "Jane Doe") {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "2025-03-04") || !strings.Contains(body, "Dr. Patel") {
		t.Errorf("body = %q", body)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	_, _, err := e.Render("no-such-template", nil)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("err = %v, want ErrTemplateNotFound", err)
	}
}

type captureSender struct {
	emails []string
	fail   bool
}

func (s *captureSender) SendEmail(_ context.Context, to, subject, body string) error {
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.emails = append(s.emails, to+": "+subject)
	return nil
}

func (s *captureSender) SendSMS(_ context.Context, to, body string) error {
	return nil
}

func TestDispatcherSend(t *testing.T) {
	sender := &captureSender{}
	d := NewDispatcher(NewTemplateEngine(), sender, sender)

	n, err := d.Send(context.Background(), TypeEmail, "jane@example.com", "analysis-reviewed", map[string]string{
		"patient_name": "Jane",
		"date":         "2025-03-04",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n.Status != "sent" || n.SentAt == nil {
		t.Errorf("status = %q, sent_at = %v", n.Status, n.SentAt)
	}
	if len(sender.emails) != 1 {
		t.Fatalf("captured %d emails, want 1", len(sender.emails))
	}
	if got := d.History(); len(got) != 1 {
		t.Errorf("history length = %d, want 1", len(got))
	}
}

func TestDispatcherRecordsFailure(t *testing.T) {
	sender := &captureSender{fail: true}
	d := NewDispatcher(NewTemplateEngine(), sender, sender)

	n, err := d.Send(context.Background(), TypeEmail, "jane@example.com", "prescription-ready", nil)
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if n == nil || n.Status != "failed" || n.Error == "" {
		t.Errorf("notification = %+v", n)
	}
}

func TestLogSenderNeverFails(t *testing.T) {
	s := NewLogSender(zerolog.Nop())
	if err := s.SendEmail(context.Background(), "a@b.c", "s", "b"); err != nil {
		t.Errorf("SendEmail: %v", err)
	}
	if err := s.SendSMS(context.Background(), "5551234567", "b"); err != nil {
		t.Errorf("SendSMS: %v", err)
	}
}
