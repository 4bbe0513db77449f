package fleet

import (
	"sort"
	"sync"
)

// MaxTrailPoints bounds the per-robot breadcrumb trail.
const MaxTrailPoints = 200

// TrailPoint is one (lon, lat) breadcrumb position.
type TrailPoint struct {
	Lon float64
	Lat float64
}

// RobotStore is the normalized robot table plus the derived movement
// trails. It is mutated only by inbound server messages or confirmed
// local actions; every mutation is applied atomically under the lock.
type RobotStore struct {
	mu     sync.Mutex
	robots map[string]Robot
	trails map[string][]TrailPoint
}

// NewRobotStore returns an empty robot store.
func NewRobotStore() *RobotStore {
	return &RobotStore{
		robots: make(map[string]Robot),
		trails: make(map[string][]TrailPoint),
	}
}

// ReplaceAll swaps in a full robot table from a state.sync message.
// Trails survive a sync: they are client-derived, not server state.
func (s *RobotStore) ReplaceAll(robots map[string]Robot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.robots = make(map[string]Robot, len(robots))
	for id, r := range robots {
		s.robots[id] = r
	}
}

// Upsert replaces one robot wholesale and appends its position to the
// trail if it moved. A point is recorded only when it differs from the
// last one; the trail is bounded to the most recent MaxTrailPoints.
func (s *RobotStore) Upsert(r Robot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.robots[r.ID] = r

	trail := s.trails[r.ID]
	p := TrailPoint{Lon: r.Position.Longitude, Lat: r.Position.Latitude}
	if n := len(trail); n > 0 && trail[n-1] == p {
		return
	}
	if len(trail) >= MaxTrailPoints {
		trail = trail[len(trail)-(MaxTrailPoints-1):]
	}
	s.trails[r.ID] = append(trail, p)
}

// MergeTier sets only the autonomy tier of an existing robot, preserving
// every other field. Unknown ids are ignored; the robot table is
// server-driven and the client never fabricates entries.
func (s *RobotStore) MergeTier(id string, tier AutonomyTier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.robots[id]
	if !ok {
		return
	}
	r.AutonomyTier = tier
	s.robots[id] = r
}

// Get returns one robot by id.
func (s *RobotStore) Get(id string) (Robot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.robots[id]
	return r, ok
}

// Trail returns a copy of a robot's breadcrumb trail.
func (s *RobotStore) Trail(id string) []TrailPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	trail := s.trails[id]
	out := make([]TrailPoint, len(trail))
	copy(out, trail)
	return out
}

// Snapshot returns all robots ordered by id for stable rendering.
func (s *RobotStore) Snapshot() []Robot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Robot, 0, len(s.robots))
	for _, r := range s.robots {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of known robots.
func (s *RobotStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.robots)
}

// Stats summarizes the fleet for the console header.
type Stats struct {
	Total       int
	ByStatus    map[RobotStatus]int
	ByType      map[RobotType]int
	MeanBattery float64
}

// FleetStats aggregates status, type, and battery across all robots.
func (s *RobotStore) FleetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		ByStatus: make(map[RobotStatus]int),
		ByType:   make(map[RobotType]int),
	}
	var battery float64
	for _, r := range s.robots {
		st.Total++
		st.ByStatus[r.Status]++
		st.ByType[r.RobotType]++
		battery += r.Health.BatteryPercent
	}
	if st.Total > 0 {
		st.MeanBattery = battery / float64(st.Total)
	}
	return st
}
