// AI suggestion and mission plan types mirrored from the server
package ai

// Severity orders suggestions for display: critical first, info last.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SeverityRank returns the sort position of a severity, critical first.
// Unknown severities sort last.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	}
	return 3
}

// SuggestionStatus is the disposition of a suggestion.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
	SuggestionExpired  SuggestionStatus = "expired"
)

// SuggestionSource identifies the generator of a suggestion.
type SuggestionSource string

const (
	SourceHeuristic SuggestionSource = "heuristic"
	SourceAI        SuggestionSource = "ai"
)

// ProposedAction is the command a suggestion would execute on approval.
type ProposedAction struct {
	CommandType string         `json:"commandType"`
	RobotID     string         `json:"robotId"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Suggestion is an advisory recommendation pushed by the server.
// Suggestions are created by server push and mutated in place by
// approve/reject round-trips; the client never fabricates one.
// Timestamps are unix seconds; ExpiresAt 0 means never.
type Suggestion struct {
	ID             string           `json:"id"`
	RobotID        string           `json:"robotId"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Reasoning      string           `json:"reasoning"`
	Severity       Severity         `json:"severity"`
	ProposedAction *ProposedAction  `json:"proposedAction"`
	Confidence     float64          `json:"confidence"`
	Status         SuggestionStatus `json:"status"`
	Source         SuggestionSource `json:"source"`
	CreatedAt      float64          `json:"createdAt"`
	ExpiresAt      float64          `json:"expiresAt"`
}

// MissionPlan is a proposed multi-robot assignment awaiting operator
// approval. At most one pending plan exists per client at a time.
type MissionPlan struct {
	Name                     string       `json:"name"`
	EstimatedDurationMinutes float64      `json:"estimatedDurationMinutes"`
	Assignments              []Assignment `json:"assignments"`
	Contingencies            []Contingency `json:"contingencies"`
}

// Assignment gives one robot its role and route within a plan.
type Assignment struct {
	RobotID   string         `json:"robotId"`
	Role      string         `json:"role"`
	Rationale string         `json:"rationale"`
	Waypoints []PlanWaypoint `json:"waypoints"`
}

// PlanWaypoint is a route step inside a plan assignment.
type PlanWaypoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Action    string  `json:"action"`
}

// Contingency maps a trigger condition to a fallback action.
type Contingency struct {
	Trigger string `json:"trigger"`
	Action  string `json:"action"`
}

// MissionIntent is the operator's planning request.
type MissionIntent struct {
	Objective         string         `json:"objective"`
	Zone              map[string]any `json:"zone,omitempty"`
	Constraints       []string       `json:"constraints"`
	RulesOfEngagement []string       `json:"rulesOfEngagement"`
	Preferences       map[string]any `json:"preferences"`
	SelectedRobots    []string       `json:"selectedRobots,omitempty"`
}
