package channel

import "encoding/json"

// Frame is the wire envelope on the push channel, discriminated by Type.
// Unknown types are a forward-compatible no-op, never an error.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	FrameTypeAuth     = "auth"
	FrameTypeReminder = "reminder"
)

// NewFrame wraps a payload into a typed frame.
func NewFrame(frameType string, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Type: frameType,
		Data: data,
	}, nil
}

// AuthPayload is the outbound handshake, sent exactly once per successful
// transition into the open state.
type AuthPayload struct {
	UserID string `json:"userId"`
}

// ReminderPayload is the inbound reminder event.
type ReminderPayload struct {
	HabitID     string `json:"habitId"`
	HabitName   string `json:"habitName"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
	Timestamp   string `json:"timestamp"`
}
