package ai

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

type stubClient struct {
	approved  Suggestion
	rejected  Suggestion
	err       error
	plan      *MissionPlan
	planErr   error
	approveOK bool
	intents   []MissionIntent
}

func (c *stubClient) ApproveSuggestion(_ context.Context, id string) (Suggestion, error) {
	return c.approved, c.err
}

func (c *stubClient) RejectSuggestion(_ context.Context, id string) (Suggestion, error) {
	return c.rejected, c.err
}

func (c *stubClient) GeneratePlan(_ context.Context, intent MissionIntent) (*MissionPlan, error) {
	c.intents = append(c.intents, intent)
	return c.plan, c.planErr
}

func (c *stubClient) ApprovePlan(context.Context, MissionPlan) error {
	if c.approveOK {
		return nil
	}
	return errors.New("server unavailable")
}

func pendingSuggestion(id string, sev Severity, createdAt float64) Suggestion {
	return Suggestion{ID: id, RobotID: "r1", Severity: sev, Status: SuggestionPending, CreatedAt: createdAt}
}

func TestSortedSeverityThenNewest(t *testing.T) {
	s := NewStore(&stubClient{}, slog.Default())
	s.Upsert(pendingSuggestion("s1", SeverityInfo, 100))
	s.Upsert(pendingSuggestion("s2", SeverityCritical, 50))
	s.Upsert(pendingSuggestion("s3", SeverityWarning, 80))
	s.Upsert(pendingSuggestion("s4", SeverityCritical, 90))

	got := s.Sorted()
	want := []string{"s4", "s2", "s3", "s1"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("sorted[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestApproveOverwritesWithServerEntity(t *testing.T) {
	client := &stubClient{approved: Suggestion{ID: "s1", Status: SuggestionApproved, Title: "rewritten"}}
	s := NewStore(client, slog.Default())
	s.Upsert(pendingSuggestion("s1", SeverityWarning, 1))

	if err := s.Approve(context.Background(), "s1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, _ := s.Get("s1")
	if got.Status != SuggestionApproved || got.Title != "rewritten" {
		t.Errorf("local entity should be the server's returned one: %+v", got)
	}
}

func TestApproveFailureLeavesSuggestionUnchanged(t *testing.T) {
	client := &stubClient{err: errors.New("network")}
	s := NewStore(client, slog.Default())
	s.Upsert(pendingSuggestion("s1", SeverityWarning, 1))

	if err := s.Approve(context.Background(), "s1"); err == nil {
		t.Fatalf("expected error")
	}
	got, _ := s.Get("s1")
	if got.Status != SuggestionPending {
		t.Errorf("status = %s, want pending after transport failure", got.Status)
	}
}

func TestGeneratePlanLifecycle(t *testing.T) {
	client := &stubClient{plan: &MissionPlan{Name: "sector sweep"}}
	s := NewStore(client, slog.Default())

	intent := MissionIntent{
		Objective:         "patrol sector 7",
		Constraints:       []string{},
		RulesOfEngagement: []string{},
		Preferences:       map[string]any{},
	}
	s.GeneratePlan(context.Background(), intent)

	st := s.Plan()
	if st.Loading || st.Err != "" || st.Plan == nil || st.Plan.Name != "sector sweep" {
		t.Fatalf("plan state = %+v", st)
	}

	// A new request clears the prior plan before issuing.
	client.plan = nil
	client.planErr = errors.New("no eligible robots")
	s.GeneratePlan(context.Background(), intent)

	st = s.Plan()
	if st.Plan != nil {
		t.Errorf("prior plan should have been cleared")
	}
	if st.Err != "no eligible robots" {
		t.Errorf("err = %q, want server error surfaced", st.Err)
	}

	// A successful retry clears the error.
	client.plan = &MissionPlan{Name: "second try"}
	client.planErr = nil
	s.GeneratePlan(context.Background(), intent)
	if st := s.Plan(); st.Err != "" || st.Plan == nil {
		t.Errorf("retry state = %+v", st)
	}
}

func TestApprovePlanClearsPendingOnSuccess(t *testing.T) {
	client := &stubClient{plan: &MissionPlan{Name: "p"}, approveOK: true}
	s := NewStore(client, slog.Default())
	s.GeneratePlan(context.Background(), MissionIntent{Objective: "x"})

	if err := s.ApprovePlan(context.Background()); err != nil {
		t.Fatalf("approve plan: %v", err)
	}
	if st := s.Plan(); st.Plan != nil {
		t.Errorf("pending plan should clear on 2xx")
	}

	// Approving with nothing pending is a no-op.
	if err := s.ApprovePlan(context.Background()); err != nil {
		t.Errorf("no-op approve returned %v", err)
	}
}

func TestApprovePlanFailureKeepsPlan(t *testing.T) {
	client := &stubClient{plan: &MissionPlan{Name: "p"}}
	s := NewStore(client, slog.Default())
	s.GeneratePlan(context.Background(), MissionIntent{Objective: "x"})

	if err := s.ApprovePlan(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	st := s.Plan()
	if st.Plan == nil {
		t.Errorf("plan should survive a failed approval")
	}
	if st.Err == "" {
		t.Errorf("failure should surface as a renderable error")
	}
}

func TestClearPlanIsLocalOnly(t *testing.T) {
	client := &stubClient{plan: &MissionPlan{Name: "p"}}
	s := NewStore(client, slog.Default())
	s.GeneratePlan(context.Background(), MissionIntent{Objective: "x"})

	calls := len(client.intents)
	s.ClearPlan()
	if st := s.Plan(); st.Plan != nil || st.Err != "" {
		t.Errorf("clear left state: %+v", st)
	}
	if len(client.intents) != calls {
		t.Errorf("ClearPlan must not round-trip")
	}
}

func TestPendingFiltersByRobotAndStatus(t *testing.T) {
	s := NewStore(&stubClient{}, slog.Default())
	s.Upsert(pendingSuggestion("s1", SeverityInfo, 1))
	done := pendingSuggestion("s2", SeverityCritical, 2)
	done.Status = SuggestionApproved
	s.Upsert(done)
	other := pendingSuggestion("s3", SeverityWarning, 3)
	other.RobotID = "r2"
	s.Upsert(other)

	got := s.Pending("r1")
	if len(got) != 1 || got[0].ID != "s1" {
		t.Errorf("pending(r1) = %+v", got)
	}
	if len(s.Pending("")) != 2 {
		t.Errorf("pending(all) should include both robots")
	}
}
