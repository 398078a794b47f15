package notify

import (
	"context"
	"log/slog"
	"time"
)

// Event types published after state changes.
const (
	EventAppointmentBooked      = "appointment.booked"
	EventAppointmentRescheduled = "appointment.rescheduled"
	EventAppointmentCancelled   = "appointment.cancelled"
	EventAppointmentReminder    = "appointment.reminder"
	EventPasswordResetRequested = "user.password_reset_requested"
)

// Event is a domain event keyed by the aggregate it concerns.
type Event struct {
	Type       string            `json:"type"`
	Key        string            `json:"key"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       map[string]string `json:"data,omitempty"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType, key string, data map[string]string) Event {
	return Event{
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher delivers domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Messenger sends a short text message to a phone number.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.InfoContext(ctx, "event", "type", e.Type, "key", e.Key, "data", e.Data)
	return nil
}

// LogMessenger writes messages to the log. Used when no SMS provider is configured.
type LogMessenger struct {
	logger *slog.Logger
}

func NewLogMessenger(logger *slog.Logger) *LogMessenger {
	return &LogMessenger{logger: logger}
}

func (m *LogMessenger) Send(ctx context.Context, to, body string) error {
	m.logger.InfoContext(ctx, "sms (not sent, no provider)", "to", to, "body", body)
	return nil
}
