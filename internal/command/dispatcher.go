package command

import (
	"log/slog"
	"sync"
)

// SendFunc is the outbound channel capability. It is installed by the
// connection layer when the channel opens and revoked (set to nil) when
// it closes.
type SendFunc func(msgType string, payload any)

// sendPayload is the command.send wire payload.
type sendPayload struct {
	RobotID     string         `json:"robotId"`
	CommandType string         `json:"commandType"`
	Parameters  map[string]any `json:"parameters"`
}

// Dispatcher turns operator intents into outbound command.send messages.
// With no capability installed, dispatch is a silent no-op: the UI keeps
// working and the server's own command lifecycle pushes remain the only
// source of command records.
type Dispatcher struct {
	mu   sync.Mutex
	send SendFunc
	log  *slog.Logger
}

// NewDispatcher returns a dispatcher with no send capability yet.
func NewDispatcher(log *slog.Logger) *Dispatcher {
	return &Dispatcher{log: log}
}

// SetSend installs or revokes (nil) the outbound capability.
func (d *Dispatcher) SetSend(fn SendFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.send = fn
}

// CanSend reports whether the channel is currently usable.
func (d *Dispatcher) CanSend() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.send != nil
}

// Send issues one command intent. It reports whether the message was
// handed to the channel; false means the channel is down and the intent
// was dropped.
func (d *Dispatcher) Send(robotID, commandType string, parameters map[string]any) bool {
	d.mu.Lock()
	fn := d.send
	d.mu.Unlock()
	if fn == nil {
		d.log.Debug("command dropped, channel down", "robot", robotID, "type", commandType)
		return false
	}
	if parameters == nil {
		parameters = map[string]any{}
	}
	fn("command.send", sendPayload{RobotID: robotID, CommandType: commandType, Parameters: parameters})
	return true
}

// SendBatch issues the same intent once per robot. There is no atomic
// multi-robot transaction; it returns how many intents were actually
// handed to the channel, which may be fewer than requested if the
// channel drops mid-batch.
func (d *Dispatcher) SendBatch(robotIDs []string, commandType string, parameters map[string]any) int {
	sent := 0
	for _, id := range robotIDs {
		if d.Send(id, commandType, parameters) {
			sent++
		}
	}
	if sent < len(robotIDs) {
		d.log.Warn("partial batch delivery", "sent", sent, "requested", len(robotIDs), "type", commandType)
	}
	return sent
}
