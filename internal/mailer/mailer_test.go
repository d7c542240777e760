package mailer

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/synapse-edu/classroom-service/internal/config"
	"github.com/synapse-edu/classroom-service/internal/utils"
)

func TestNewFromConfigPicksBackend(t *testing.T) {
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Run("console fallback without smtp host", func(t *testing.T) {
		cfg := &config.Config{SMTP: config.SMTPConfig{From: "no-reply@classroom.local"}}
		if _, ok := NewFromConfig(cfg, logger).(*consoleService); !ok {
			t.Fatal("expected console backend when SMTP is unconfigured")
		}
	})

	t.Run("smtp when host set", func(t *testing.T) {
		cfg := &config.Config{SMTP: config.SMTPConfig{Host: "mail.example.com", Port: 587}}
		if _, ok := NewFromConfig(cfg, logger).(*smtpService); !ok {
			t.Fatal("expected SMTP backend when host is configured")
		}
	})
}

func TestConsoleServiceLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	svc := NewConsoleService("no-reply@classroom.local", logger)
	svc.Send(EmailMessage{
		To:      []string{"pupil@example.com"},
		Subject: "Assignment updated in Algebra",
		Body:    "The assignment has changed.",
	})

	out := buf.String()
	if !strings.Contains(out, "pupil@example.com") {
		t.Errorf("console output missing recipient: %s", out)
	}
	if !strings.Contains(out, "Assignment updated in Algebra") {
		t.Errorf("console output missing subject: %s", out)
	}
}

func TestConsoleServiceSkipsEmptyRecipients(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	NewConsoleService("no-reply@classroom.local", logger).Send(EmailMessage{Subject: "x"})

	if buf.Len() != 0 {
		t.Errorf("expected no output for empty recipient list, got %s", buf.String())
	}
}

func TestMockServiceRecordsMessages(t *testing.T) {
	mock := NewMockService()
	mock.Send(EmailMessage{To: []string{"a@example.com"}, Subject: "one"})
	mock.Send(EmailMessage{To: []string{"b@example.com"}, Subject: "two"})

	sent := mock.SentMessages()
	if len(sent) != 2 {
		t.Fatalf("expected 2 recorded messages, got %d", len(sent))
	}
	if sent[0].Subject != "one" || sent[1].Subject != "two" {
		t.Errorf("messages recorded out of order: %+v", sent)
	}
}
