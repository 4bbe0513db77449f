package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/stygmatic/Argus/internal/ai"
	"github.com/stygmatic/Argus/internal/autonomy"
	"github.com/stygmatic/Argus/internal/fleet"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

func (m model) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", max(m.width, 1))
	sections := []string{
		m.renderHeader(),
		divider,
		m.table.View(),
		divider,
		"Suggestions:",
		m.sugVP.View(),
	}
	if plan := m.renderPlan(); plan != "" {
		sections = append(sections, divider, plan)
	}
	if m.showLog {
		sections = append(sections, divider, "Autonomy Log:", m.logVP.View())
	}
	if m.showCommands {
		sections = append(sections, divider, m.renderCommands())
	}
	if m.trailRobot != "" {
		sections = append(sections, divider, m.renderTrail())
	}
	sections = append(sections, divider, m.renderBottom())
	return strings.Join(sections, "\n")
}

func (m model) renderHeader() string {
	status := m.st.ConnState.Get()
	conn := fmt.Sprintf("%sDISCONNECTED%s", colorRed, colorReset)
	if status.Connected {
		conn = fmt.Sprintf("%sCONNECTED%s", colorGreen, colorReset)
	} else if status.Reconnecting {
		conn = fmt.Sprintf("%sRECONNECTING%s", colorYellow, colorReset)
	}

	stats := m.st.Robots.FleetStats()
	parts := []string{
		fmt.Sprintf("%sARGUS%s %s", colorBlue, colorReset, conn),
		fmt.Sprintf("robots=%d", stats.Total),
		fmt.Sprintf("active=%d", stats.ByStatus[fleet.StatusActive]),
		fmt.Sprintf("error=%s%d%s", colorRed, stats.ByStatus[fleet.StatusError], colorReset),
		fmt.Sprintf("offline=%d", stats.ByStatus[fleet.StatusOffline]),
		fmt.Sprintf("avg_batt=%.0f%%", stats.MeanBattery),
		fmt.Sprintf("fleet_tier=%s%s%s", colorCyan, m.st.Autonomy.FleetDefault(), colorReset),
	}
	if mission, ok := m.st.Missions.Active(); ok {
		parts = append(parts, fmt.Sprintf("mission=%s%s%s", colorMagenta, mission.Name, colorReset))
	}
	return strings.Join(parts, "  ")
}

func (m model) renderSuggestions() string {
	sugs := m.st.Suggestions.Sorted()
	if m.st.Selection.AlertsOpen() {
		if id, ok := m.st.Selection.Primary(); ok {
			sugs = m.st.Suggestions.Pending(id)
		}
	}
	if len(sugs) == 0 {
		return "none"
	}
	var b strings.Builder
	for _, s := range sugs {
		b.WriteString(m.renderSuggestion(s))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m model) renderSuggestion(s ai.Suggestion) string {
	sevColor := colorGray
	switch s.Severity {
	case ai.SeverityCritical:
		sevColor = colorRed
	case ai.SeverityWarning:
		sevColor = colorYellow
	case ai.SeverityInfo:
		sevColor = colorBlue
	}
	line := fmt.Sprintf("%s[%s]%s %s%s%s %s (%.0f%%)",
		sevColor, strings.ToUpper(string(s.Severity)), colorReset,
		colorCyan, s.RobotID, colorReset,
		s.Title, s.Confidence*100)

	if cd, ok := m.st.Autonomy.CountdownFor(s.ID); ok {
		remaining := cd.AutoExecuteAt - float64(m.now.UnixMilli())/1000
		if remaining < 0 {
			remaining = 0
		}
		line += fmt.Sprintf(" %sauto-exec in %.0fs [o]verride%s", colorMagenta, remaining, colorReset)
	} else if s.Status == ai.SuggestionPending {
		if r, ok := m.st.Robots.Get(s.RobotID); ok {
			switch autonomy.DispositionFor(m.st.Autonomy.TierFor(r)) {
			case autonomy.DismissOnly:
				line += fmt.Sprintf(" %s[x]dismiss%s", colorGray, colorReset)
			case autonomy.RequiresApproval:
				line += fmt.Sprintf(" %s[a]pprove [x]reject%s", colorGreen, colorReset)
			case autonomy.AutoExecuted:
				line += fmt.Sprintf(" %sauto-executed%s", colorGray, colorReset)
			}
		}
	} else {
		line += fmt.Sprintf(" %s%s%s", colorGray, s.Status, colorReset)
	}
	if m.width > 0 {
		line = wordwrap.String(line, m.width)
	}
	return line
}

func (m model) renderPlan() string {
	state := m.st.Suggestions.Plan()
	switch {
	case state.Loading:
		return fmt.Sprintf("Plan: %sgenerating...%s", colorYellow, colorReset)
	case state.Err != "":
		return fmt.Sprintf("Plan: %serror: %s%s", colorRed, state.Err, colorReset)
	case state.Plan != nil:
		p := state.Plan
		var b strings.Builder
		fmt.Fprintf(&b, "Plan: %s%s%s ~%.0fmin [P]approve [C]clear\n", colorGreen, p.Name, colorReset, p.EstimatedDurationMinutes)
		for _, a := range p.Assignments {
			fmt.Fprintf(&b, "  %s%s%s %s, %d waypoints\n", colorCyan, a.RobotID, colorReset, a.Role, len(a.Waypoints))
		}
		for _, c := range p.Contingencies {
			fmt.Fprintf(&b, "  %sif%s %s %s->%s %s\n", colorYellow, colorReset, c.Trigger, colorGray, colorReset, c.Action)
		}
		return strings.TrimRight(b.String(), "\n")
	}
	return ""
}

func (m model) renderChangeLog() string {
	entries := m.st.Autonomy.ChangeLog()
	if len(entries) == 0 {
		return "none"
	}
	var b strings.Builder
	for _, e := range entries {
		subject := e.RobotID
		if subject == autonomy.FleetSubject {
			subject = "fleet"
		}
		fmt.Fprintf(&b, "%s%s%s %s -> %s by %s\n", colorCyan, subject, colorReset, e.OldTier, e.NewTier, e.ChangedBy)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m model) renderCommands() string {
	id, ok := m.st.Selection.Primary()
	if !ok {
		return "Commands: select a robot"
	}
	cmds := m.st.Commands.ForRobot(id, 5)
	if len(cmds) == 0 {
		return fmt.Sprintf("Commands for %s: none", id)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Commands for %s:\n", id)
	for _, c := range cmds {
		statusColor := colorYellow
		switch c.Status {
		case "completed":
			statusColor = colorGreen
		case "failed":
			statusColor = colorRed
		}
		fmt.Fprintf(&b, "  %s %s[%s]%s src=%s\n", c.CommandType, statusColor, c.Status, colorReset, c.Source)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m model) renderTrail() string {
	if len(m.trailPoints) == 0 {
		return fmt.Sprintf("Trail %s: empty", m.trailRobot)
	}
	last := m.trailPoints[len(m.trailPoints)-1]
	return fmt.Sprintf("Trail %s: %d points, last %.4f,%.4f", m.trailRobot, len(m.trailPoints), last.Latitude, last.Longitude)
}

func (m model) renderBottom() string {
	if m.mode != inputNone {
		label := map[inputMode]string{
			inputGoto:    "Goto (lat,lon[,alt])",
			inputCommand: "Command (verb key=val ...)",
			inputPlan:    "Plan objective",
		}[m.mode]
		return fmt.Sprintf("%s - Enter to send, Esc to cancel: %s", label, m.input.View())
	}
	line := "[enter]select [space]multi [1-4]tier [f]fleet [g]oto [c]md [a/x]suggestion [o]verride [p]lan [t]rail [l]og [v]cmds [h]elp [q]uit"
	if m.lastErr != "" {
		errLine := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(m.lastErr)
		return errLine + "\n" + line
	}
	return line
}

func (m model) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" enter select robot under cursor",
		" space toggle multi-selection",
		" 1-4   set tier (manual/assisted/supervised/autonomous)",
		" f     cycle fleet default tier",
		" g     goto command for selection (lat,lon[,alt])",
		" c     free-form command (verb key=val ...)",
		" a     approve top pending suggestion",
		" x     reject/dismiss top pending suggestion",
		" o     override the nearest auto-execute countdown",
		" p     request a mission plan",
		" P     approve the pending plan",
		" C     clear the pending plan",
		" t     fetch server-side trail for the selected robot",
		" i/e/u filter idle/error/underwater, 0 clears",
		" A     toggle per-robot alert focus",
		" l     toggle autonomy change log",
		" v     toggle command history",
		" s     toggle auto-scroll",
		" h/?   toggle this help view",
		" q     quit",
	}
	return strings.Join(lines, "\n")
}
