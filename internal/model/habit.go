package model

import "fmt"

// Frequency is the closed set of tracking cadences a habit can have.
type Frequency string

const (
	FrequencyHourly    Frequency = "hourly"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

var frequencies = map[Frequency]bool{
	FrequencyHourly:    true,
	FrequencyDaily:     true,
	FrequencyWeekly:    true,
	FrequencyBiweekly:  true,
	FrequencyMonthly:   true,
	FrequencyQuarterly: true,
	FrequencyYearly:    true,
}

func (f Frequency) Valid() bool {
	return frequencies[f]
}

// Habit is the server-owned habit record; the client holds a cached copy.
// ID is server-assigned and immutable after creation.
type Habit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Frequency   Frequency `json:"frequency"`
	StartDate   string    `json:"startDate"`
}

// TrackingEntry records that a habit was performed. Immutable once created;
// append-only from the client's perspective.
type TrackingEntry struct {
	ID        string `json:"id"`
	HabitID   string `json:"habitId"`
	Timestamp string `json:"timestamp"`
	Note      string `json:"note"`
}

type CreateHabitRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Frequency   Frequency `json:"frequency"`
	StartDate   string    `json:"startDate"`
}

func (r CreateHabitRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("habit name must not be empty")
	}
	if !r.Frequency.Valid() {
		return fmt.Errorf("unknown frequency: %q", r.Frequency)
	}
	return nil
}

// UpdateHabitRequest is a partial patch; nil fields are left unchanged.
type UpdateHabitRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Frequency   *Frequency `json:"frequency,omitempty"`
	StartDate   *string    `json:"startDate,omitempty"`
}

func (r UpdateHabitRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("habit name must not be empty")
	}
	if r.Frequency != nil && !r.Frequency.Valid() {
		return fmt.Errorf("unknown frequency: %q", *r.Frequency)
	}
	return nil
}

type CreateTrackingRequest struct {
	Note      string `json:"note,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
