// Autonomy tier orchestration: change log, countdowns, tier effects
package autonomy

import "github.com/stygmatic/Argus/internal/fleet"

// FleetSubject is the sentinel robot id for fleet-wide tier changes.
const FleetSubject = "__fleet__"

// maxChangeLog caps the tier change history; oldest entries drop first.
const maxChangeLog = 100

// ChangeEntry is one immutable tier change record. RobotID is
// FleetSubject for fleet-wide changes. Timestamp is unix seconds.
type ChangeEntry struct {
	ID        string             `json:"id"`
	RobotID   string             `json:"robotId"`
	OldTier   fleet.AutonomyTier `json:"oldTier"`
	NewTier   fleet.AutonomyTier `json:"newTier"`
	ChangedBy string             `json:"changedBy"`
	Timestamp float64            `json:"timestamp"`
}

// Countdown binds a pending suggestion to its auto-execute deadline.
// It exists only while a supervised-tier countdown is running and is a
// local render-only timer: the record's presence is the timer.
type Countdown struct {
	SuggestionID  string  `json:"suggestionId"`
	RobotID       string  `json:"robotId"`
	CommandType   string  `json:"commandType"`
	AutoExecuteAt float64 `json:"autoExecuteAt"`
}

// Disposition is what a tier means for a newly pending suggestion.
type Disposition int

const (
	// DismissOnly: shown without an approve affordance.
	DismissOnly Disposition = iota
	// RequiresApproval: execution needs an explicit operator approval.
	RequiresApproval
	// CountdownToExecute: auto-executes at a deadline unless overridden.
	CountdownToExecute
	// AutoExecuted: rendered as already executed, no affordance.
	AutoExecuted
)

// DispositionFor maps a tier to the handling of a pending suggestion.
func DispositionFor(tier fleet.AutonomyTier) Disposition {
	switch tier {
	case fleet.TierManual:
		return DismissOnly
	case fleet.TierSupervised:
		return CountdownToExecute
	case fleet.TierAutonomous:
		return AutoExecuted
	}
	return RequiresApproval
}
