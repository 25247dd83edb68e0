package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"habitsync/internal/model"
	"habitsync/internal/reminder"
)

// Gateway is the slice of the habit API the store needs. Satisfied by
// *gateway.Client; tests substitute a fake.
type Gateway interface {
	Habits(ctx context.Context) ([]model.Habit, error)
	CreateHabit(ctx context.Context, req model.CreateHabitRequest) (*model.Habit, error)
	UpdateHabit(ctx context.Context, id string, req model.UpdateHabitRequest) (*model.Habit, error)
	DeleteHabit(ctx context.Context, id string) error
	TrackingEntries(ctx context.Context, habitID string) ([]model.TrackingEntry, error)
	CreateTrackingEntry(ctx context.Context, habitID string, req model.CreateTrackingRequest) (*model.TrackingEntry, error)
}

// EnrichedHabit is a cached habit plus its optionally-loaded tracking history.
// TrackingLoaded distinguishes "never fetched" from "fetched, none exist";
// collapsing the two would make consumers skip the enrichment fetch and render
// an empty history forever.
type EnrichedHabit struct {
	model.Habit
	TrackingEntries []model.TrackingEntry
	TrackingLoaded  bool
}

// Observer is notified after every store operation settles. Presentation
// concerns (toasts) hang off this instead of living inside the store.
type Observer func(op string, err error)

// HabitStore is the canonical client-side cache of habits. All writes funnel
// through its methods; the gateway call is awaited first and the cache is only
// touched on success, so a failed mutation leaves the cache exactly as it was.
//
// Racing mutations on the same id are not sequenced: the response that arrives
// last wins the cache. That matches the server being the source of truth.
type HabitStore struct {
	mu          sync.Mutex
	habits      []EnrichedHabit
	initialized bool
	lastErr     error

	gateway   Gateway
	reminders *reminder.Set
	observer  Observer
	logger    *zap.Logger
}

func NewHabitStore(gw Gateway, reminders *reminder.Set, logger *zap.Logger) *HabitStore {
	return &HabitStore{
		gateway:   gw,
		reminders: reminders,
		logger:    logger,
	}
}

// SetObserver registers the operation-result observer. Pass nil to detach.
func (s *HabitStore) SetObserver(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = obs
}

func (s *HabitStore) notify(op string, err error) {
	s.mu.Lock()
	obs := s.observer
	s.mu.Unlock()
	if obs != nil {
		obs(op, err)
	}
}

// FetchAll replaces the whole cache with the gateway's result and marks the
// store initialized. On failure the cache is left untouched.
func (s *HabitStore) FetchAll(ctx context.Context) error {
	habits, err := s.gateway.Habits(ctx)
	if err != nil {
		s.recordErr(err)
		s.logger.Error("Failed to fetch habits", zap.Error(err))
		s.notify("fetch", err)
		return err
	}

	enriched := make([]EnrichedHabit, 0, len(habits))
	for _, h := range habits {
		enriched = append(enriched, EnrichedHabit{Habit: h})
	}

	s.mu.Lock()
	s.habits = enriched
	s.initialized = true
	s.lastErr = nil
	s.mu.Unlock()

	s.notify("fetch", nil)
	return nil
}

// Create sends the draft to the gateway and appends the returned canonical
// habit. There is no optimistic insert: the id must come from the server.
func (s *HabitStore) Create(ctx context.Context, req model.CreateHabitRequest) (*model.Habit, error) {
	habit, err := s.gateway.CreateHabit(ctx, req)
	if err != nil {
		s.recordErr(err)
		s.logger.Error("Failed to create habit", zap.String("name", req.Name), zap.Error(err))
		s.notify("create", err)
		return nil, err
	}

	s.mu.Lock()
	s.habits = append(s.habits, EnrichedHabit{Habit: *habit})
	s.mu.Unlock()

	s.notify("create", nil)
	return habit, nil
}

// Update patches the habit on the server, then merges the returned fields into
// the cached entry. A stale id that matches nothing is a no-op on the cache.
func (s *HabitStore) Update(ctx context.Context, id string, req model.UpdateHabitRequest) error {
	habit, err := s.gateway.UpdateHabit(ctx, id, req)
	if err != nil {
		s.recordErr(err)
		s.logger.Error("Failed to update habit", zap.String("habit_id", id), zap.Error(err))
		s.notify("update", err)
		return err
	}

	s.mu.Lock()
	for i := range s.habits {
		if s.habits[i].ID == id {
			s.habits[i].Habit = *habit
			break
		}
	}
	s.mu.Unlock()

	s.notify("update", nil)
	return nil
}

// Delete removes the habit on the server, then drops it from the cache and
// evicts any outstanding reminder. Cache removal waits for gateway
// confirmation so a failed delete never flickers the habit away.
func (s *HabitStore) Delete(ctx context.Context, id string) error {
	if err := s.gateway.DeleteHabit(ctx, id); err != nil {
		s.recordErr(err)
		s.logger.Error("Failed to delete habit", zap.String("habit_id", id), zap.Error(err))
		s.notify("delete", err)
		return err
	}

	s.mu.Lock()
	kept := s.habits[:0]
	for _, h := range s.habits {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	s.habits = kept
	s.mu.Unlock()

	s.reminders.Remove(id)

	s.notify("delete", nil)
	return nil
}

// Track records a tracking entry for the habit. On success the entry is
// appended to the habit's history only if that history was already loaded
// (an unloaded history stays unloaded rather than becoming a partial one),
// and the habit's reminder, if any, is cleared.
func (s *HabitStore) Track(ctx context.Context, id string, note string) (*model.TrackingEntry, error) {
	entry, err := s.gateway.CreateTrackingEntry(ctx, id, model.CreateTrackingRequest{Note: note})
	if err != nil {
		s.recordErr(err)
		s.logger.Error("Failed to track habit", zap.String("habit_id", id), zap.Error(err))
		s.notify("track", err)
		return nil, err
	}

	s.mu.Lock()
	for i := range s.habits {
		if s.habits[i].ID == id {
			if s.habits[i].TrackingLoaded {
				s.habits[i].TrackingEntries = append(s.habits[i].TrackingEntries, *entry)
			}
			break
		}
	}
	s.mu.Unlock()

	s.reminders.Remove(id)

	s.notify("track", nil)
	return entry, nil
}

// Enrich loads the habit's tracking history into the cache, transitioning it
// out of "never fetched" even when the fetched list is empty. Concurrent
// enriches for different ids touch only their own entry.
func (s *HabitStore) Enrich(ctx context.Context, id string) error {
	entries, err := s.gateway.TrackingEntries(ctx, id)
	if err != nil {
		s.recordErr(err)
		s.logger.Error("Failed to load tracking history", zap.String("habit_id", id), zap.Error(err))
		s.notify("enrich", err)
		return err
	}

	s.mu.Lock()
	for i := range s.habits {
		if s.habits[i].ID == id {
			s.habits[i].TrackingEntries = entries
			s.habits[i].TrackingLoaded = true
			break
		}
	}
	s.mu.Unlock()

	s.notify("enrich", nil)
	return nil
}

// Habits returns a snapshot of the cache. The entries slices are shared and
// must be treated as read-only by callers.
func (s *HabitStore) Habits() []EnrichedHabit {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]EnrichedHabit, len(s.habits))
	copy(snapshot, s.habits)
	return snapshot
}

// Habit returns the cached habit for id, or false if it is not cached.
func (s *HabitStore) Habit(id string) (EnrichedHabit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.habits {
		if h.ID == id {
			return h, true
		}
	}
	return EnrichedHabit{}, false
}

func (s *HabitStore) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Err returns the most recent operation error, cleared by a successful
// FetchAll.
func (s *HabitStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *HabitStore) recordErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}
