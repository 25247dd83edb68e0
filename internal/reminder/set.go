package reminder

import "sync"

// Set holds the habit ids with an outstanding reminder. Membership only; no
// counts or timestamps. Entries are added by inbound push events and removed
// when the habit is tracked, dismissed, or deleted.
type Set struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewSet() *Set {
	return &Set{
		ids: make(map[string]struct{}),
	}
}

// Add marks a habit as having an outstanding reminder. Idempotent.
func (s *Set) Add(habitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[habitID] = struct{}{}
}

// Remove clears the reminder for a habit. Removing an absent id is a no-op.
func (s *Set) Remove(habitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, habitID)
}

func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{})
}

func (s *Set) Contains(habitID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[habitID]
	return ok
}

func (s *Set) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// IDs returns a snapshot of the current membership.
func (s *Set) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids
}
