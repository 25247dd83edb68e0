package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitsync/internal/auth"
	"habitsync/internal/model"
)

type tokenCreds string

func (c tokenCreds) Credentials() (auth.Credentials, error) {
	return auth.Credentials{Token: string(c), UserID: "user-123"}, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, tokenCreds("tok-abc"))
}

func TestHabitsDecodesList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/habits", r.URL.Path)
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]model.Habit{{ID: "h1", Name: "Read", Frequency: model.FrequencyDaily}})
	})

	habits, err := c.Habits(context.Background())

	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "h1", habits[0].ID)
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Habits(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "/habits", apiErr.Endpoint)
}

func TestCreateHabitPostsDraft(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req model.CreateHabitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(model.Habit{
			ID:        "h1",
			Name:      req.Name,
			Frequency: req.Frequency,
		})
	})

	habit, err := c.CreateHabit(context.Background(), model.CreateHabitRequest{
		Name:      "Meditate",
		Frequency: model.FrequencyDaily,
	})

	require.NoError(t, err)
	assert.Equal(t, "h1", habit.ID)
	assert.Equal(t, "Meditate", habit.Name)
}

func TestCreateHabitRejectsInvalidDraftLocally(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.CreateHabit(context.Background(), model.CreateHabitRequest{
		Name:      "Nap",
		Frequency: "sometimes",
	})

	require.Error(t, err)
	assert.False(t, called)
}

func TestDeleteHabitIssuesDelete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/habits/h1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteHabit(context.Background(), "h1"))
}

func TestAcknowledgeReminderBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/reminders/h1", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "h1-reminder", body["id"])
		assert.Equal(t, "h1", body["habitId"])
		assert.NotEmpty(t, body["lastReminder"])
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.AcknowledgeReminder(context.Background(), "h1"))
}

func TestStatsQueriesCarryDaysParam(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stats/completion-rates":
			assert.Equal(t, "30", r.URL.Query().Get("days"))
			json.NewEncoder(w).Encode([]model.HabitCompletionRate{})
		case "/stats/overview":
			assert.Empty(t, r.URL.RawQuery)
			json.NewEncoder(w).Encode(model.OverallStats{TotalHabits: 2})
		case "/habits/h1/progress":
			assert.Equal(t, "7", r.URL.Query().Get("days"))
			json.NewEncoder(w).Encode([]model.ProgressPoint{{Date: "2025-01-01", Count: 1}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	_, err := c.HabitCompletionRates(context.Background(), 30)
	require.NoError(t, err)
	stats, err := c.OverallStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalHabits)
	points, err := c.HabitProgress(context.Background(), "h1", 7)
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second, nil)

	_, err := c.Habits(context.Background())

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
