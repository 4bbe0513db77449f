// Command lifecycle tracking and outbound dispatch
package command

// Source identifies who initiated a command.
type Source string

const (
	SourceOperator Source = "operator"
	SourceAI       Source = "ai"
)

// Status is the server-driven command lifecycle state. Acknowledged
// renders identically to pending.
type Status string

const (
	StatusPending      Status = "pending"
	StatusSent         Status = "sent"
	StatusAcknowledged Status = "acknowledged"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// Command is one issued command as reported by command.status pushes.
// The client never fabricates command records; it waits for the server's
// own lifecycle messages. Timestamps are unix seconds.
type Command struct {
	ID          string         `json:"id"`
	RobotID     string         `json:"robotId"`
	CommandType string         `json:"commandType"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Source      Source         `json:"source"`
	Status      Status         `json:"status"`
	CreatedAt   float64        `json:"createdAt"`
	UpdatedAt   float64        `json:"updatedAt"`
}

// Terminal reports whether the command has reached a final state.
func (c Command) Terminal() bool {
	return c.Status == StatusCompleted || c.Status == StatusFailed
}
