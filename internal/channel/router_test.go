package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRouterDispatchesOnType(t *testing.T) {
	r := NewRouter(zaptest.NewLogger(t))
	var got ReminderPayload
	r.Register(FrameTypeReminder, func(ctx context.Context, data json.RawMessage) error {
		return json.Unmarshal(data, &got)
	})

	raw := []byte(`{"type":"reminder","data":{"habitId":"h1","habitName":"Read","frequency":"daily"}}`)
	r.Dispatch(context.Background(), raw)

	assert.Equal(t, "h1", got.HabitID)
	assert.Equal(t, "Read", got.HabitName)
	assert.Equal(t, "daily", got.Frequency)
}

func TestRouterDropsMalformedFrames(t *testing.T) {
	r := NewRouter(zaptest.NewLogger(t))
	called := false
	r.Register(FrameTypeReminder, func(ctx context.Context, data json.RawMessage) error {
		called = true
		return nil
	})

	r.Dispatch(context.Background(), []byte(`{not json`))

	assert.False(t, called)
}

func TestRouterIgnoresUnknownTypes(t *testing.T) {
	r := NewRouter(zaptest.NewLogger(t))
	r.Register(FrameTypeReminder, func(ctx context.Context, data json.RawMessage) error {
		t.Fatal("reminder handler must not run for other types")
		return nil
	})

	// Forward-compatible: new server-side frame types are a no-op.
	r.Dispatch(context.Background(), []byte(`{"type":"streak-update","data":{}}`))
}

func TestRouterSurvivesHandlerError(t *testing.T) {
	r := NewRouter(zaptest.NewLogger(t))
	r.Register(FrameTypeReminder, func(ctx context.Context, data json.RawMessage) error {
		return fmt.Errorf("boom")
	})

	r.Dispatch(context.Background(), []byte(`{"type":"reminder","data":{}}`))
}

func TestRouterRecoversFromHandlerPanic(t *testing.T) {
	r := NewRouter(zaptest.NewLogger(t))
	r.Register(FrameTypeReminder, func(ctx context.Context, data json.RawMessage) error {
		panic("boom")
	})

	require.NotPanics(t, func() {
		r.Dispatch(context.Background(), []byte(`{"type":"reminder","data":{}}`))
	})
}

func TestRouterPreservesArrivalOrder(t *testing.T) {
	r := NewRouter(zaptest.NewLogger(t))
	var seen []string
	r.Register(FrameTypeReminder, func(ctx context.Context, data json.RawMessage) error {
		var p ReminderPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		seen = append(seen, p.HabitID)
		return nil
	})

	for _, id := range []string{"h1", "h2", "h3"} {
		r.Dispatch(context.Background(), []byte(`{"type":"reminder","data":{"habitId":"`+id+`"}}`))
	}

	assert.Equal(t, []string{"h1", "h2", "h3"}, seen)
}
