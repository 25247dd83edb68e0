package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"habitsync/internal/notify"
	"habitsync/internal/reminder"
	"habitsync/pkg/circuitbreaker"
	"habitsync/pkg/metrics"
)

// Acknowledger is the reminder-acknowledgement slice of the gateway.
type Acknowledger interface {
	AcknowledgeReminder(ctx context.Context, habitID string) error
}

// ReminderHandler turns an inbound reminder frame into local state and a user
// notification. The server acknowledgement is best-effort: its failure is
// logged and never blocks the user seeing the reminder.
type ReminderHandler struct {
	reminders *reminder.Set
	policy    *notify.Policy
	acks      Acknowledger
	breaker   *circuitbreaker.CircuitBreaker
	logger    *zap.Logger
}

func NewReminderHandler(
	reminders *reminder.Set,
	policy *notify.Policy,
	acks Acknowledger,
	logger *zap.Logger,
) *ReminderHandler {
	return &ReminderHandler{
		reminders: reminders,
		policy:    policy,
		acks:      acks,
		breaker:   circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:    logger,
	}
}

func (h *ReminderHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload ReminderPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to parse reminder payload: %w", err)
	}
	if payload.HabitID == "" {
		return fmt.Errorf("reminder payload missing habitId")
	}

	metrics.IncrementReminderReceived(payload.Frequency)
	h.logger.Info("Reminder received",
		zap.String("habit_id", payload.HabitID),
		zap.String("habit_name", payload.HabitName),
		zap.String("frequency", payload.Frequency),
	)

	// Best-effort acknowledgement. The breaker keeps a down server from
	// being hit on every single reminder.
	if err := h.breaker.Execute(func() error {
		return h.acks.AcknowledgeReminder(ctx, payload.HabitID)
	}); err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) {
			h.logger.Debug("Reminder acknowledgement skipped, breaker open",
				zap.String("habit_id", payload.HabitID),
			)
		} else {
			h.logger.Warn("Failed to acknowledge reminder",
				zap.String("habit_id", payload.HabitID),
				zap.Error(err),
			)
		}
	}

	h.reminders.Add(payload.HabitID)

	h.policy.Deliver(ctx, notify.ReminderEvent{
		HabitID:   payload.HabitID,
		HabitName: payload.HabitName,
		Frequency: payload.Frequency,
	})

	return nil
}
