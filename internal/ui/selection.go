// Ephemeral operator interaction state
package ui

import (
	"sync"

	"github.com/stygmatic/Argus/internal/fleet"
)

// CommandMode is the active command-input mode. Coordinate-consuming
// modes (goto) interpret the next map pick as the command target.
type CommandMode string

const (
	ModeNone CommandMode = "none"
	ModeGoto CommandMode = "goto"
)

// Selection is UI-only state that gates which intents are currently
// legal. It never reaches the server and survives no reconnect.
type Selection struct {
	mu           sync.Mutex
	selected     []string
	mode         CommandMode
	statusFilter fleet.RobotStatus
	typeFilter   fleet.RobotType
	alertsOpen   bool
}

// NewSelection returns an empty selection in mode none.
func NewSelection() *Selection {
	return &Selection{mode: ModeNone}
}

// Select makes id the sole selected robot and resets the command mode;
// a mode aimed at the previous selection must not fire at the new one.
// Empty id clears the selection.
func (s *Selection) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeNone
	if id == "" {
		s.selected = nil
		return
	}
	s.selected = []string{id}
}

// Toggle adds or removes id from a multi-selection.
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sel := range s.selected {
		if sel == id {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			if len(s.selected) == 0 {
				s.mode = ModeNone
			}
			return
		}
	}
	s.selected = append(s.selected, id)
}

// Selected returns the selected robot ids in selection order.
func (s *Selection) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.selected))
	copy(out, s.selected)
	return out
}

// Primary returns the first selected robot, if any.
func (s *Selection) Primary() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.selected) == 0 {
		return "", false
	}
	return s.selected[0], true
}

// SetMode enters a command-input mode. Modes other than none require a
// selection; the call reports whether the mode was entered.
func (s *Selection) SetMode(mode CommandMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode != ModeNone && len(s.selected) == 0 {
		return false
	}
	s.mode = mode
	return true
}

// Mode returns the active command-input mode.
func (s *Selection) Mode() CommandMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetFilters narrows the robot list. Zero values disable a filter.
func (s *Selection) SetFilters(status fleet.RobotStatus, robotType fleet.RobotType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusFilter = status
	s.typeFilter = robotType
}

// Filter returns the robots passing the active filters.
func (s *Selection) Filter(robots []fleet.Robot) []fleet.Robot {
	s.mu.Lock()
	status, robotType := s.statusFilter, s.typeFilter
	s.mu.Unlock()
	out := robots[:0:0]
	for _, r := range robots {
		if status != "" && r.Status != status {
			continue
		}
		if robotType != "" && r.RobotType != robotType {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ToggleAlerts flips the alerts panel and returns the new state.
func (s *Selection) ToggleAlerts() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alertsOpen = !s.alertsOpen
	return s.alertsOpen
}

// AlertsOpen reports whether the alerts panel is showing.
func (s *Selection) AlertsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alertsOpen
}
