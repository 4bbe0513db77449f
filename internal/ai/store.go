package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Client is the server round-trip surface the store depends on.
// Implemented by the api package; stubbed in tests.
type Client interface {
	ApproveSuggestion(ctx context.Context, id string) (Suggestion, error)
	RejectSuggestion(ctx context.Context, id string) (Suggestion, error)
	GeneratePlan(ctx context.Context, intent MissionIntent) (*MissionPlan, error)
	ApprovePlan(ctx context.Context, plan MissionPlan) error
}

// PlanState is the mission plan negotiation snapshot: idle when all
// fields are zero, loading while a request is in flight, ready for
// review when Plan is set, errored when Err is set.
type PlanState struct {
	Plan    *MissionPlan
	Loading bool
	Err     string
}

// Store holds advisory suggestions and the single in-flight mission
// plan negotiation.
type Store struct {
	mu          sync.Mutex
	suggestions map[string]Suggestion
	plan        *MissionPlan
	planLoading bool
	planErr     string
	planSeq     int

	client Client
	log    *slog.Logger
}

// NewStore returns an empty suggestion store backed by client.
func NewStore(client Client, log *slog.Logger) *Store {
	return &Store{
		suggestions: make(map[string]Suggestion),
		client:      client,
		log:         log,
	}
}

// Upsert inserts or replaces a suggestion, last write wins.
func (s *Store) Upsert(sug Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions[sug.ID] = sug
}

// Remove drops a suggestion by id.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.suggestions, id)
}

// Get returns one suggestion by id.
func (s *Store) Get(id string) (Suggestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sug, ok := s.suggestions[id]
	return sug, ok
}

// Sorted returns all suggestions ordered critical before warning before
// info, newest first within equal severity.
func (s *Store) Sorted() []Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Suggestion, 0, len(s.suggestions))
	for _, sug := range s.suggestions {
		out = append(out, sug)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := SeverityRank(out[i].Severity), SeverityRank(out[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// Pending returns sorted suggestions still awaiting disposition,
// optionally filtered to one robot (empty id means all).
func (s *Store) Pending(robotID string) []Suggestion {
	all := s.Sorted()
	out := all[:0]
	for _, sug := range all {
		if sug.Status != SuggestionPending {
			continue
		}
		if robotID != "" && sug.RobotID != robotID {
			continue
		}
		out = append(out, sug)
	}
	return out
}

// Approve round-trips an approval. On success the server's returned
// entity overwrites the local one; the client does not assume the new
// state. On failure the suggestion is left unchanged.
func (s *Store) Approve(ctx context.Context, id string) error {
	sug, err := s.client.ApproveSuggestion(ctx, id)
	if err != nil {
		return fmt.Errorf("approve suggestion %s: %w", id, err)
	}
	s.Upsert(sug)
	return nil
}

// Reject round-trips a rejection, trusting the server's returned entity.
func (s *Store) Reject(ctx context.Context, id string) error {
	sug, err := s.client.RejectSuggestion(ctx, id)
	if err != nil {
		return fmt.Errorf("reject suggestion %s: %w", id, err)
	}
	s.Upsert(sug)
	return nil
}

// GeneratePlan starts a new plan negotiation. Any prior pending plan or
// error is cleared first. The call blocks until the server responds;
// run it from a goroutine or tea.Cmd. If a newer generate request was
// issued while this one was in flight, its late result is discarded.
func (s *Store) GeneratePlan(ctx context.Context, intent MissionIntent) {
	s.mu.Lock()
	s.plan = nil
	s.planErr = ""
	s.planLoading = true
	s.planSeq++
	seq := s.planSeq
	s.mu.Unlock()

	plan, err := s.client.GeneratePlan(ctx, intent)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.planSeq {
		return
	}
	s.planLoading = false
	if err != nil {
		s.planErr = err.Error()
		s.log.Warn("plan generation failed", "error", err)
		return
	}
	s.plan = plan
}

// ApprovePlan sends the pending plan back for execution. A 2xx response
// is terminal from the requester's perspective: the pending slot clears
// without waiting for a mission broadcast. With no pending plan the
// call is a no-op.
func (s *Store) ApprovePlan(ctx context.Context) error {
	s.mu.Lock()
	plan := s.plan
	s.mu.Unlock()
	if plan == nil {
		return nil
	}

	if err := s.client.ApprovePlan(ctx, *plan); err != nil {
		s.mu.Lock()
		s.planErr = err.Error()
		s.mu.Unlock()
		return fmt.Errorf("approve plan: %w", err)
	}

	s.mu.Lock()
	s.plan = nil
	s.mu.Unlock()
	return nil
}

// ClearPlan discards the pending plan and any error locally. The plan
// was never committed, so no server round-trip is made.
func (s *Store) ClearPlan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = nil
	s.planErr = ""
}

// Plan returns the current negotiation state.
func (s *Store) Plan() PlanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PlanState{Plan: s.plan, Loading: s.planLoading, Err: s.planErr}
}
