package notify

import (
	"context"

	"go.uber.org/zap"
)

// Toast is the in-app notification shown for every reminder regardless of
// native-notification eligibility.
type Toast struct {
	Title  string
	Body   string
	Action *ToastAction
}

// ToastAction is an optional action offered on a toast. The sink invokes Run
// when the user accepts it.
type ToastAction struct {
	Label string
	Run   func(ctx context.Context)
}

// Toaster renders toasts. The engine only depends on this interface; the
// actual rendering lives with the embedding application.
type Toaster interface {
	Show(toast Toast)
}

// LogToaster writes toasts to the structured log. Used by the headless client
// binary where there is no UI surface to render into.
type LogToaster struct {
	logger *zap.Logger
}

func NewLogToaster(logger *zap.Logger) *LogToaster {
	return &LogToaster{logger: logger}
}

func (t *LogToaster) Show(toast Toast) {
	fields := []zap.Field{
		zap.String("title", toast.Title),
		zap.String("body", toast.Body),
	}
	if toast.Action != nil {
		fields = append(fields, zap.String("action", toast.Action.Label))
	}
	t.logger.Info("Toast", fields...)
}
