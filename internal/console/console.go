// Package console renders the operator station as a terminal dashboard.
package console

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stygmatic/Argus/internal/api"
	"github.com/stygmatic/Argus/internal/station"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// refreshMsg repaints after an applied inbound message.
type refreshMsg struct{}

// errMsg surfaces a failed action on the status line.
type errMsg struct{ text string }

// trailMsg carries a fetched server-side trail.
type trailMsg struct {
	robotID string
	points  []api.TrailPoint
}

// Console owns the bubbletea program on top of a station.
type Console struct {
	program teaProgram
	done    chan struct{}
}

// New builds a console. The station's notify hook is wired so every
// applied inbound message repaints.
func New(st *station.Station, apiClient *api.Client, trailMinutes int) *Console {
	c := &Console{done: make(chan struct{})}
	m := newModel(st, apiClient, trailMinutes)
	p := tea.NewProgram(m, tea.WithAltScreen())
	c.program = p
	st.SetNotify(func() { p.Send(refreshMsg{}) })
	go func() {
		_, _ = p.Run()
		close(c.done)
	}()
	return c
}

// Wait blocks until the operator quits the dashboard.
func (c *Console) Wait() { <-c.done }

// Close shuts the program down and waits for teardown.
func (c *Console) Close() error {
	if c.program != nil {
		c.program.Send(tea.Quit())
	}
	if c.done != nil {
		<-c.done
	}
	return nil
}
