package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"habitsync/pkg/metrics"
)

// Permission is the platform notification permission state. It is read from
// the platform on every decision, never cached across sessions.
type Permission int

const (
	PermissionUnsupported Permission = iota
	PermissionDefault                // not yet decided
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionUnsupported:
		return "unsupported"
	case PermissionDefault:
		return "default"
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	}
	return "unknown"
}

// Platform is the host notification surface: permission query, user-gated
// permission request, and a fire-and-forget native notification.
type Platform interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Notify(title, body string) error
}

// ReminderEvent is a reminder as seen by the delivery decision.
type ReminderEvent struct {
	HabitID   string
	HabitName string
	Frequency string
}

func (e ReminderEvent) body() string {
	return fmt.Sprintf("It's time to track this habit - should be tracked %s", e.Frequency)
}

// Policy decides how a reminder reaches the user. A toast is always shown; the
// native notification is strictly additive on top of it, gated on permission.
type Policy struct {
	platform Platform
	toasts   Toaster
	logger   *zap.Logger
}

func NewPolicy(platform Platform, toasts Toaster, logger *zap.Logger) *Policy {
	return &Policy{
		platform: platform,
		toasts:   toasts,
		logger:   logger,
	}
}

// Deliver surfaces one reminder event.
//
// permission | toast | native | toast action
// -----------+-------+--------+-------------------------------
// unsupported| yes   | no     | none
// default    | yes   | no     | "Enable notifications"
// denied     | yes   | no     | none
// granted    | yes   | yes    | none
//
// The permission request is never issued proactively; only the toast action,
// an explicit user tap, triggers it. On grant the native notification for
// this same event fires immediately.
func (p *Policy) Deliver(ctx context.Context, event ReminderEvent) {
	permission := p.platform.Permission()
	body := event.body()

	toast := Toast{
		Title: event.HabitName,
		Body:  body,
	}
	if permission == PermissionDefault {
		toast.Action = &ToastAction{
			Label: "Enable notifications",
			Run: func(ctx context.Context) {
				p.requestAndEscalate(ctx, event)
			},
		}
	}

	p.toasts.Show(toast)
	metrics.IncrementNotificationDelivered("toast")

	if permission == PermissionGranted {
		p.native(event.HabitName, body)
	}
}

// requestAndEscalate runs the permission prompt and, only on grant, fires the
// native notification for the event that carried the action.
func (p *Policy) requestAndEscalate(ctx context.Context, event ReminderEvent) {
	permission, err := p.platform.RequestPermission(ctx)
	if err != nil {
		p.logger.Warn("Notification permission request failed", zap.Error(err))
		return
	}
	if permission != PermissionGranted {
		// Denied is a valid terminal state, not an error.
		p.logger.Info("Notification permission not granted",
			zap.String("permission", permission.String()),
		)
		return
	}

	p.toasts.Show(Toast{Title: "Notifications enabled", Body: "Habit reminders will now notify you"})
	p.native(event.HabitName, event.body())
}

func (p *Policy) native(title, body string) {
	if err := p.platform.Notify(title, body); err != nil {
		p.logger.Warn("Failed to show native notification", zap.Error(err))
		return
	}
	metrics.IncrementNotificationDelivered("native")
}
