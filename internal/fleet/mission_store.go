package fleet

import (
	"sort"
	"sync"
)

// MissionStore holds missions by id plus an advisory pointer to the
// mission currently used for the trajectory overlay. The pointer tracks
// the most recently upserted active mission; the server is free to run
// several active missions and the client shows the first match.
type MissionStore struct {
	mu       sync.Mutex
	missions map[string]Mission
	activeID string
}

// NewMissionStore returns an empty mission store.
func NewMissionStore() *MissionStore {
	return &MissionStore{missions: make(map[string]Mission)}
}

// ReplaceAll swaps in a full mission table from a state.sync message.
func (s *MissionStore) ReplaceAll(missions map[string]Mission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missions = make(map[string]Mission, len(missions))
	for id, m := range missions {
		s.missions[id] = m
	}
	s.activeID = ""
	ids := make([]string, 0, len(missions))
	for id := range missions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if missions[id].Status == MissionActive {
			s.activeID = id
			break
		}
	}
}

// Upsert inserts or replaces one mission. An active mission takes over
// the overlay pointer.
func (s *MissionStore) Upsert(m Mission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missions[m.ID] = m
	if m.Status == MissionActive {
		s.activeID = m.ID
	}
}

// SetActive overrides the overlay pointer. Empty id clears it.
func (s *MissionStore) SetActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// Get returns one mission by id.
func (s *MissionStore) Get(id string) (Mission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.missions[id]
	return m, ok
}

// Active returns the mission currently selected for the trajectory
// overlay, if any.
func (s *MissionStore) Active() (Mission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID == "" {
		return Mission{}, false
	}
	m, ok := s.missions[s.activeID]
	return m, ok
}

// Snapshot returns all missions ordered by id.
func (s *MissionStore) Snapshot() []Mission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Mission, 0, len(s.missions))
	for _, m := range s.missions {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
