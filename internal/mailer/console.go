package mailer

import (
	"sync"

	"github.com/synapse-edu/classroom-service/internal/utils"
)

type consoleService struct {
	from   string
	logger utils.Logger
}

// NewConsoleService logs notification emails instead of sending them.
// Used when no SMTP server is configured.
func NewConsoleService(from string, logger utils.Logger) EmailService {
	return &consoleService{from: from, logger: logger}
}

func (s *consoleService) Send(msg EmailMessage) {
	if len(msg.To) == 0 {
		return
	}
	s.logger.Info("notification email (console delivery)",
		"from", s.from,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
}

// MockService records sent messages for tests.
type MockService struct {
	mu   sync.Mutex
	Sent []EmailMessage
}

func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) Send(msg EmailMessage) {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()
}

func (m *MockService) SentMessages() []EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailMessage, len(m.Sent))
	copy(out, m.Sent)
	return out
}
