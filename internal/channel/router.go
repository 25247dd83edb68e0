package channel

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"habitsync/pkg/metrics"
)

type HandlerFunc func(ctx context.Context, data json.RawMessage) error

// Router parses inbound frames and dispatches on the type discriminator.
// Nothing it does throws past the channel boundary: malformed frames are
// logged and dropped, unknown types are ignored, handler errors are logged.
type Router struct {
	routes map[string]HandlerFunc
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		routes: make(map[string]HandlerFunc),
		logger: logger,
	}
}

func (r *Router) Register(frameType string, h HandlerFunc) {
	r.routes[frameType] = h
}

// Dispatch handles one raw inbound message. Frames are dispatched in the
// order Dispatch is called; the router never reorders or batches.
func (r *Router) Dispatch(ctx context.Context, raw []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Panic in frame handler", zap.Any("panic", rec))
		}
	}()

	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		r.logger.Warn("Dropping malformed frame", zap.Error(err))
		metrics.IncrementFrameDropped("malformed")
		return
	}

	h, ok := r.routes[frame.Type]
	if !ok {
		// Unknown frame types are expected as the protocol grows.
		r.logger.Debug("Ignoring frame with unknown type", zap.String("type", frame.Type))
		metrics.IncrementFrameDropped("unknown_type")
		return
	}

	if err := h(ctx, frame.Data); err != nil {
		r.logger.Error("Frame handler failed",
			zap.String("type", frame.Type),
			zap.Error(err),
		)
	}
}
