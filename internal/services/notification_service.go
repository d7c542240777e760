package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/synapse-edu/classroom-service/internal/events"
	"github.com/synapse-edu/classroom-service/internal/mailer"
)

// NotificationService consumes notification events from the bus and
// turns them into emails. It runs as a background goroutine for the
// lifetime of the process when the bus has an in-process subscriber.
type NotificationService struct {
	bus    *events.Bus
	mail   mailer.EmailService
	logger *slog.Logger
}

func NewNotificationService(bus *events.Bus, mail mailer.EmailService, logger *slog.Logger) *NotificationService {
	return &NotificationService{bus: bus, mail: mail, logger: logger}
}

// Start subscribes to the notification topic and dispatches events
// until ctx is cancelled. With a Kafka-backed bus the subscription is
// nil and consumption is expected to happen out of process.
func (n *NotificationService) Start(ctx context.Context) error {
	messages, err := n.bus.Subscribe(ctx, events.TopicNotifications)
	if err != nil {
		return fmt.Errorf("failed to subscribe to notifications: %w", err)
	}
	if messages == nil {
		n.logger.Info("no in-process subscriber, notification consumer not started")
		return nil
	}

	go func() {
		for msg := range messages {
			n.handle(ctx, msg.Payload)
			msg.Ack()
		}
	}()

	n.logger.Info("notification consumer started", "topic", events.TopicNotifications)
	return nil
}

// handle dispatches one event. Malformed events and delivery problems
// are logged and dropped; the consumer never stops over a single bad
// message.
func (n *NotificationService) handle(ctx context.Context, payload []byte) {
	var event events.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		n.logger.Error("failed to decode notification event", "error", err)
		return
	}

	switch event.Type {
	case events.TypeAssignmentUpdated:
		var data events.AssignmentUpdatedEvent
		if err := json.Unmarshal(event.Data, &data); err != nil {
			n.logger.Error("failed to decode assignment update event",
				"event_id", event.ID, "error", err)
			return
		}
		n.notifyAssignmentUpdated(&data)
	default:
		n.logger.Warn("unknown notification event type",
			"event_id", event.ID, "event_type", event.Type)
	}
}

func (n *NotificationService) notifyAssignmentUpdated(data *events.AssignmentUpdatedEvent) {
	if len(data.MemberEmails) == 0 {
		return
	}

	n.mail.Send(mailer.EmailMessage{
		To:      data.MemberEmails,
		Subject: fmt.Sprintf("Assignment updated in %s", data.SpaceName),
		Body: fmt.Sprintf(
			"The assignment %q in your space %q has been updated.\nPlease review the latest details.",
			data.AssignmentTitle, data.SpaceName),
	})

	n.logger.Info("assignment update notifications dispatched",
		"assignment_id", data.AssignmentID,
		"recipients", len(data.MemberEmails))
}
