package autonomy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stygmatic/Argus/internal/fleet"
)

// TierClient persists tier changes server-side. Implemented by the api
// package; stubbed in tests.
type TierClient interface {
	SetRobotTier(ctx context.Context, robotID string, tier fleet.AutonomyTier) error
	SetFleetDefaultTier(ctx context.Context, tier fleet.AutonomyTier) error
}

// Rejecter rejects a suggestion server-side. Satisfied by ai.Store.
type Rejecter interface {
	Reject(ctx context.Context, suggestionID string) error
}

// Engine tracks the fleet default tier, running auto-execute countdowns
// and the bounded tier change history, and mediates tier-set intents.
type Engine struct {
	mu           sync.Mutex
	fleetDefault fleet.AutonomyTier
	countdowns   map[string]Countdown
	changeLog    []ChangeEntry

	robots   *fleet.RobotStore
	client   TierClient
	rejecter Rejecter
	log      *slog.Logger
	now      func() time.Time
}

// NewEngine returns an engine starting at the assisted fleet default.
func NewEngine(robots *fleet.RobotStore, client TierClient, rejecter Rejecter, log *slog.Logger) *Engine {
	return &Engine{
		fleetDefault: fleet.TierAssisted,
		countdowns:   make(map[string]Countdown),
		robots:       robots,
		client:       client,
		rejecter:     rejecter,
		log:          log,
		now:          time.Now,
	}
}

// FleetDefault returns the current fleet-wide default tier.
func (e *Engine) FleetDefault() fleet.AutonomyTier {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fleetDefault
}

// TierFor resolves a robot's effective tier: its own tier if set,
// otherwise the fleet default.
func (e *Engine) TierFor(r fleet.Robot) fleet.AutonomyTier {
	if fleet.ValidTier(r.AutonomyTier) {
		return r.AutonomyTier
	}
	return e.FleetDefault()
}

// SetRobotTier applies the new tier optimistically, then persists it.
// On persist failure the robot reverts to its pre-change snapshot.
func (e *Engine) SetRobotTier(ctx context.Context, robotID string, tier fleet.AutonomyTier) error {
	if !fleet.ValidTier(tier) {
		return fmt.Errorf("set tier: unknown tier %q", tier)
	}
	prev, ok := e.robots.Get(robotID)
	if !ok {
		return fmt.Errorf("set tier: unknown robot %q", robotID)
	}

	e.robots.MergeTier(robotID, tier)
	if err := e.client.SetRobotTier(ctx, robotID, tier); err != nil {
		e.robots.MergeTier(robotID, prev.AutonomyTier)
		return fmt.Errorf("set tier for %s: %w", robotID, err)
	}

	e.appendEntry(ChangeEntry{
		ID:        uuid.New().String(),
		RobotID:   robotID,
		OldTier:   prev.AutonomyTier,
		NewTier:   tier,
		ChangedBy: "operator",
		Timestamp: float64(e.now().UnixMilli()) / 1000,
	})
	return nil
}

// SetFleetDefault persists the fleet-wide default tier and applies it
// locally only after the request succeeds. Unlike per-robot changes
// this is not optimistic: it affects every robot at once.
func (e *Engine) SetFleetDefault(ctx context.Context, tier fleet.AutonomyTier) error {
	if !fleet.ValidTier(tier) {
		return fmt.Errorf("set fleet default: unknown tier %q", tier)
	}
	if err := e.client.SetFleetDefaultTier(ctx, tier); err != nil {
		return fmt.Errorf("set fleet default tier: %w", err)
	}

	e.mu.Lock()
	old := e.fleetDefault
	e.fleetDefault = tier
	e.mu.Unlock()

	e.appendEntry(ChangeEntry{
		ID:        uuid.New().String(),
		RobotID:   FleetSubject,
		OldTier:   old,
		NewTier:   tier,
		ChangedBy: "operator",
		Timestamp: float64(e.now().UnixMilli()) / 1000,
	})
	return nil
}

// ApplyChange applies a server-pushed autonomy.changed broadcast: the
// entry joins the change log and the new tier takes effect. A broadcast
// always overwrites the local value, including one racing an in-flight
// local request (last write by wall clock).
func (e *Engine) ApplyChange(entry ChangeEntry) {
	e.appendEntry(entry)
	if entry.RobotID == FleetSubject {
		e.mu.Lock()
		e.fleetDefault = entry.NewTier
		e.mu.Unlock()
		return
	}
	e.robots.MergeTier(entry.RobotID, entry.NewTier)
}

// AddCountdown inserts or replaces a countdown keyed by suggestion id.
func (e *Engine) AddCountdown(c Countdown) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.countdowns[c.SuggestionID] = c
}

// RemoveCountdown drops a countdown without any server interaction,
// used when the server reports the suggestion as terminal.
func (e *Engine) RemoveCountdown(suggestionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.countdowns, suggestionID)
}

// Override cancels a running countdown and rejects its suggestion. The
// countdown record is deleted immediately; only the suggestion-reject
// round-trip goes to the server. Returns false, without any server
// call, if the countdown was already gone.
func (e *Engine) Override(ctx context.Context, suggestionID string) (bool, error) {
	e.mu.Lock()
	_, ok := e.countdowns[suggestionID]
	if ok {
		delete(e.countdowns, suggestionID)
	}
	e.mu.Unlock()
	if !ok {
		return false, nil
	}

	if err := e.rejecter.Reject(ctx, suggestionID); err != nil {
		return true, fmt.Errorf("override countdown %s: %w", suggestionID, err)
	}
	return true, nil
}

// Countdowns returns running countdowns ordered by deadline.
func (e *Engine) Countdowns() []Countdown {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Countdown, 0, len(e.countdowns))
	for _, c := range e.countdowns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AutoExecuteAt < out[j].AutoExecuteAt })
	return out
}

// CountdownFor returns the running countdown for a suggestion, if any.
func (e *Engine) CountdownFor(suggestionID string) (Countdown, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.countdowns[suggestionID]
	return c, ok
}

// ChangeLog returns a copy of the tier change history, oldest first.
func (e *Engine) ChangeLog() []ChangeEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ChangeEntry, len(e.changeLog))
	copy(out, e.changeLog)
	return out
}

func (e *Engine) appendEntry(entry ChangeEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.changeLog) >= maxChangeLog {
		e.changeLog = e.changeLog[len(e.changeLog)-(maxChangeLog-1):]
	}
	e.changeLog = append(e.changeLog, entry)
}
