package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"habitsync/internal/auth"
	"habitsync/internal/model"
	"habitsync/pkg/metrics"
)

// APIError is a non-2xx response from the habit API. The status code is
// carried so callers can branch on it; mutations are never retried here.
type APIError struct {
	Status   int
	Endpoint string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("habit api error: %d on %s", e.Status, e.Endpoint)
}

// Client is the typed wrapper around the habit REST API. Stateless; one
// instance is shared by the store and the statistics aggregator.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      auth.Provider
}

func NewClient(baseURL string, timeout time.Duration, creds auth.Provider) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		creds: creds,
	}
}

func (c *Client) Habits(ctx context.Context) ([]model.Habit, error) {
	var habits []model.Habit
	if err := c.do(ctx, http.MethodGet, "/habits", "list_habits", nil, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

func (c *Client) Habit(ctx context.Context, id string) (*model.Habit, error) {
	var habit model.Habit
	if err := c.do(ctx, http.MethodGet, "/habits/"+id, "get_habit", nil, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

func (c *Client) CreateHabit(ctx context.Context, req model.CreateHabitRequest) (*model.Habit, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var habit model.Habit
	if err := c.do(ctx, http.MethodPost, "/habits", "create_habit", req, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

func (c *Client) UpdateHabit(ctx context.Context, id string, req model.UpdateHabitRequest) (*model.Habit, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var habit model.Habit
	if err := c.do(ctx, http.MethodPatch, "/habits/"+id, "update_habit", req, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/habits/"+id, "delete_habit", nil, nil)
}

func (c *Client) TrackingEntries(ctx context.Context, habitID string) ([]model.TrackingEntry, error) {
	var entries []model.TrackingEntry
	if err := c.do(ctx, http.MethodGet, "/habits/"+habitID+"/tracking", "list_tracking", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) CreateTrackingEntry(ctx context.Context, habitID string, req model.CreateTrackingRequest) (*model.TrackingEntry, error) {
	var entry model.TrackingEntry
	if err := c.do(ctx, http.MethodPost, "/habits/"+habitID+"/tracking", "create_tracking", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

type reminderAck struct {
	ID           string `json:"id"`
	HabitID      string `json:"habitId"`
	LastReminder string `json:"lastReminder"`
}

// AcknowledgeReminder tells the server a reminder reached this client.
// Callers treat failures as best-effort; local reminder handling never waits
// on this succeeding.
func (c *Client) AcknowledgeReminder(ctx context.Context, habitID string) error {
	body := reminderAck{
		ID:           habitID + "-reminder",
		HabitID:      habitID,
		LastReminder: time.Now().Format(time.RFC3339),
	}
	return c.do(ctx, http.MethodPatch, "/reminders/"+habitID, "ack_reminder", body, nil)
}

func (c *Client) OverallStats(ctx context.Context) (*model.OverallStats, error) {
	var stats model.OverallStats
	if err := c.do(ctx, http.MethodGet, "/stats/overview", "overall_stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) HabitCompletionRates(ctx context.Context, days int) ([]model.HabitCompletionRate, error) {
	var rates []model.HabitCompletionRate
	if err := c.do(ctx, http.MethodGet, "/stats/completion-rates"+daysQuery(days), "completion_rates", nil, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

func (c *Client) DailyCompletions(ctx context.Context, days int) ([]model.DailyCompletion, error) {
	var completions []model.DailyCompletion
	if err := c.do(ctx, http.MethodGet, "/stats/daily-completions"+daysQuery(days), "daily_completions", nil, &completions); err != nil {
		return nil, err
	}
	return completions, nil
}

func (c *Client) HabitStats(ctx context.Context, habitID string) (*model.HabitStats, error) {
	var stats model.HabitStats
	if err := c.do(ctx, http.MethodGet, "/habits/"+habitID+"/stats", "habit_stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) HabitProgress(ctx context.Context, habitID string, days int) ([]model.ProgressPoint, error) {
	var points []model.ProgressPoint
	if err := c.do(ctx, http.MethodGet, "/habits/"+habitID+"/progress"+daysQuery(days), "habit_progress", nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func daysQuery(days int) string {
	if days <= 0 {
		return ""
	}
	return "?days=" + strconv.Itoa(days)
}

// do issues one request and decodes the response into out (nil out discards
// the body). Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path, endpoint string, body, out any) error {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if creds, err := c.creds.Credentials(); err == nil && creds.Token != "" {
			req.Header.Set("Authorization", "Bearer "+creds.Token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordGatewayRequest(endpoint, "error", time.Since(start))
		return err
	}
	defer resp.Body.Close()

	metrics.RecordGatewayRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Endpoint: path}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
