package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/synapse-edu/classroom-service/internal/utils"
)

const (
	// TopicNotifications carries member-facing notification events.
	TopicNotifications = "classroom.notifications"

	eventSource  = "classroom-service"
	eventVersion = "1.0"
)

// Event is the envelope published on the bus.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// AssignmentUpdatedEvent fans out to every current member of the space.
type AssignmentUpdatedEvent struct {
	AssignmentID    uint     `json:"assignment_id"`
	AssignmentTitle string   `json:"assignment_title"`
	SpaceID         uint     `json:"space_id"`
	SpaceName       string   `json:"space_name"`
	MemberEmails    []string `json:"member_emails"`
}

const TypeAssignmentUpdated = "assignment.updated"

// EventPublisher publishes envelope events to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, eventType string, data interface{}) error
	Close() error
}

// NewEvent builds an envelope around a payload.
func NewEvent(eventType string, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// watermillPublisher adapts any watermill publisher to EventPublisher.
type watermillPublisher struct {
	publisher message.Publisher
	logger    utils.Logger
}

func newWatermillPublisher(pub message.Publisher, logger utils.Logger) EventPublisher {
	return &watermillPublisher{publisher: pub, logger: logger}
}

func (p *watermillPublisher) Publish(ctx context.Context, topic, eventType string, data interface{}) error {
	event, err := NewEvent(eventType, data)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", eventType)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	p.logger.Debug("event published", "topic", topic, "event_type", eventType, "event_id", event.ID)
	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher records events for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []*Event
	logger utils.Logger
}

func NewMockEventPublisher(logger utils.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic, eventType string, data interface{}) error {
	event, err := NewEvent(eventType, data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	m.logger.Debug("mock event recorded", "topic", topic, "event_type", eventType)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

func (m *MockEventPublisher) GetPublishedEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
