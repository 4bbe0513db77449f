package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stygmatic/Argus/internal/ai"
	"github.com/stygmatic/Argus/internal/api"
	"github.com/stygmatic/Argus/internal/fleet"
	"github.com/stygmatic/Argus/internal/station"
	"github.com/stygmatic/Argus/internal/ui"
)

const actionTimeout = 10 * time.Second

// inputMode says what the palette input is currently collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputCommand
	inputGoto
	inputPlan
)

// tickMsg drives countdown repaints once per second.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	st           *station.Station
	api          *api.Client
	trailMinutes int

	table  table.Model
	sugVP  viewport.Model
	logVP  viewport.Model
	input  textinput.Model
	mode   inputMode
	now    time.Time
	width  int
	height int

	showLog      bool
	showCommands bool
	help         bool
	autoscroll   bool
	lastErr      string

	trailRobot  string
	trailPoints []api.TrailPoint
}

func newModel(st *station.Station, apiClient *api.Client, trailMinutes int) model {
	cols := []table.Column{
		{Title: "ID", Width: 14},
		{Title: "Name", Width: 16},
		{Title: "Type", Width: 10},
		{Title: "Status", Width: 10},
		{Title: "Batt%", Width: 6},
		{Title: "Sig%", Width: 5},
		{Title: "Tier", Width: 11},
		{Title: "Position", Width: 22},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(true))
	return model{
		st:           st,
		api:          apiClient,
		trailMinutes: trailMinutes,
		table:        t,
		sugVP:        viewport.New(0, 0),
		logVP:        viewport.New(0, 0),
		now:          time.Now(),
		autoscroll:   true,
		showCommands: true,
	}
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.sugVP.Width = msg.Width
		m.logVP.Width = msg.Width
		m.layout()
		m.refresh()
	case refreshMsg:
		m.refresh()
	case tickMsg:
		m.now = time.Time(msg)
		m.refresh()
		return m, tick()
	case errMsg:
		m.lastErr = msg.text
	case trailMsg:
		m.trailRobot = msg.robotID
		m.trailPoints = msg.points
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != inputNone {
		switch msg.Type {
		case tea.KeyEnter:
			cmd := m.submitInput()
			m.mode = inputNone
			m.st.Selection.SetMode(ui.ModeNone)
			return m, cmd
		case tea.KeyEsc:
			m.mode = inputNone
			m.st.Selection.SetMode(ui.ModeNone)
			return m, nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}
	if m.help {
		switch msg.String() {
		case "?", "h", "esc":
			m.help = false
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.selectCursor(false)
		return m, nil
	case " ":
		m.selectCursor(true)
		return m, nil
	case "1", "2", "3", "4":
		return m, m.setTierForPrimary(tierForKey(msg.String()))
	case "f":
		return m, m.cycleFleetDefault()
	case "g":
		if m.st.Selection.SetMode(ui.ModeGoto) {
			m.openInput(inputGoto, "lat,lon[,alt]")
		}
		return m, nil
	case "c":
		if _, ok := m.st.Selection.Primary(); ok {
			m.openInput(inputCommand, "verb key=val ...")
		}
		return m, nil
	case "p":
		m.openInput(inputPlan, "mission objective")
		return m, nil
	case "P":
		return m, m.approvePlan()
	case "C":
		m.st.Suggestions.ClearPlan()
		return m, nil
	case "a":
		return m, m.approveTopSuggestion()
	case "x":
		return m, m.rejectTopSuggestion()
	case "o":
		return m, m.overrideTopCountdown()
	case "t":
		return m, m.fetchTrail()
	case "l":
		m.showLog = !m.showLog
		m.layout()
		return m, nil
	case "v":
		m.showCommands = !m.showCommands
		m.layout()
		return m, nil
	case "A":
		m.st.Selection.ToggleAlerts()
		return m, nil
	case "s":
		m.autoscroll = !m.autoscroll
		if m.autoscroll {
			m.sugVP.GotoBottom()
			m.logVP.GotoBottom()
		}
		return m, nil
	case "i", "e", "u", "0":
		m.applyFilter(msg.String())
		m.refresh()
		return m, nil
	case "h", "?":
		m.help = true
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// selectCursor selects the robot under the table cursor; toggle adds it
// to a multi-selection instead of replacing it.
func (m *model) selectCursor(toggle bool) {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return
	}
	id := row[0]
	if toggle {
		m.st.Selection.Toggle(id)
	} else {
		m.st.Selection.Select(id)
	}
}

func (m *model) applyFilter(key string) {
	switch key {
	case "i":
		m.st.Selection.SetFilters(fleet.StatusIdle, "")
	case "e":
		m.st.Selection.SetFilters(fleet.StatusError, "")
	case "u":
		m.st.Selection.SetFilters("", fleet.TypeUnderwater)
	default:
		m.st.Selection.SetFilters("", "")
	}
}

func (m *model) openInput(mode inputMode, placeholder string) {
	m.input = textinput.New()
	m.input.Placeholder = placeholder
	m.input.Focus()
	m.mode = mode
	m.lastErr = ""
}

func (m *model) submitInput() tea.Cmd {
	val := strings.TrimSpace(m.input.Value())
	if val == "" {
		return nil
	}
	switch m.mode {
	case inputGoto:
		return m.sendGoto(val)
	case inputCommand:
		return m.sendCommand(val)
	case inputPlan:
		return m.generatePlan(val)
	}
	return nil
}

func (m *model) sendGoto(val string) tea.Cmd {
	params, err := parseGotoInput(val)
	if err != nil {
		return report(err.Error())
	}
	targets := m.st.Selection.Selected()
	sent := m.st.Dispatcher.SendBatch(targets, "goto", params)
	if sent < len(targets) {
		return report(fmt.Sprintf("goto sent to %d/%d robots", sent, len(targets)))
	}
	return nil
}

func (m *model) sendCommand(val string) tea.Cmd {
	verb, params, err := parseCommandInput(val)
	if err != nil {
		return report(err.Error())
	}
	targets := m.st.Selection.Selected()
	sent := m.st.Dispatcher.SendBatch(targets, verb, params)
	if sent < len(targets) {
		return report(fmt.Sprintf("%s sent to %d/%d robots", verb, sent, len(targets)))
	}
	return nil
}

func (m *model) generatePlan(objective string) tea.Cmd {
	intent := ai.MissionIntent{
		Objective:         objective,
		Constraints:       []string{},
		RulesOfEngagement: []string{},
		Preferences:       map[string]any{},
		SelectedRobots:    m.st.Selection.Selected(),
	}
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		st.Suggestions.GeneratePlan(ctx, intent)
		return refreshMsg{}
	}
}

func (m *model) approvePlan() tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := st.Suggestions.ApprovePlan(ctx); err != nil {
			return errMsg{text: err.Error()}
		}
		return refreshMsg{}
	}
}

func (m *model) setTierForPrimary(tier fleet.AutonomyTier) tea.Cmd {
	id, ok := m.st.Selection.Primary()
	if !ok {
		return nil
	}
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := st.Autonomy.SetRobotTier(ctx, id, tier); err != nil {
			return errMsg{text: err.Error()}
		}
		return refreshMsg{}
	}
}

func (m *model) cycleFleetDefault() tea.Cmd {
	next := nextTier(m.st.Autonomy.FleetDefault())
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := st.Autonomy.SetFleetDefault(ctx, next); err != nil {
			return errMsg{text: err.Error()}
		}
		return refreshMsg{}
	}
}

func (m *model) approveTopSuggestion() tea.Cmd {
	sug, ok := m.topSuggestion()
	if !ok {
		return nil
	}
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := st.Suggestions.Approve(ctx, sug.ID); err != nil {
			return errMsg{text: err.Error()}
		}
		return refreshMsg{}
	}
}

func (m *model) rejectTopSuggestion() tea.Cmd {
	sug, ok := m.topSuggestion()
	if !ok {
		return nil
	}
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := st.Suggestions.Reject(ctx, sug.ID); err != nil {
			return errMsg{text: err.Error()}
		}
		return refreshMsg{}
	}
}

func (m *model) overrideTopCountdown() tea.Cmd {
	cds := m.st.Autonomy.Countdowns()
	if len(cds) == 0 {
		return nil
	}
	id := cds[0].SuggestionID
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if _, err := st.Autonomy.Override(ctx, id); err != nil {
			return errMsg{text: err.Error()}
		}
		return refreshMsg{}
	}
}

func (m *model) fetchTrail() tea.Cmd {
	id, ok := m.st.Selection.Primary()
	if !ok || m.api == nil {
		return nil
	}
	client, minutes := m.api, m.trailMinutes
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		points, err := client.RobotTrail(ctx, id, minutes)
		if err != nil {
			return errMsg{text: err.Error()}
		}
		return trailMsg{robotID: id, points: points}
	}
}

func report(text string) tea.Cmd {
	return func() tea.Msg { return errMsg{text: text} }
}

func tierForKey(key string) fleet.AutonomyTier {
	switch key {
	case "1":
		return fleet.TierManual
	case "2":
		return fleet.TierAssisted
	case "3":
		return fleet.TierSupervised
	}
	return fleet.TierAutonomous
}

func nextTier(t fleet.AutonomyTier) fleet.AutonomyTier {
	switch t {
	case fleet.TierManual:
		return fleet.TierAssisted
	case fleet.TierAssisted:
		return fleet.TierSupervised
	case fleet.TierSupervised:
		return fleet.TierAutonomous
	}
	return fleet.TierManual
}

// parseGotoInput parses "lat,lon[,alt]" into goto parameters.
func parseGotoInput(val string) (map[string]any, error) {
	parts := strings.Split(val, ",")
	if len(parts) < 2 {
		return nil, fmt.Errorf("expected lat,lon[,alt]")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("bad latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("bad longitude: %w", err)
	}
	params := map[string]any{"latitude": lat, "longitude": lon}
	if len(parts) > 2 {
		alt, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad altitude: %w", err)
		}
		params["altitude"] = alt
	}
	return params, nil
}

// parseCommandInput parses "verb key=val key=val ..."; numeric values
// become float64, everything else stays a string.
func parseCommandInput(val string) (string, map[string]any, error) {
	fields := strings.Fields(val)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("expected verb key=val ...")
	}
	verb := fields[0]
	params := make(map[string]any)
	for _, f := range fields[1:] {
		k, v, found := strings.Cut(f, "=")
		if !found || k == "" {
			return "", nil, fmt.Errorf("bad parameter %q", f)
		}
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			params[k] = n
		} else {
			params[k] = v
		}
	}
	return verb, params, nil
}

func (m *model) layout() {
	logHeight := 0
	if m.showLog {
		logHeight = 6
	}
	cmdHeight := 0
	if m.showCommands {
		cmdHeight = 5
	}
	sugHeight := 8
	tableHeight := m.height - sugHeight - logHeight - cmdHeight - 10
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table.SetHeight(tableHeight)
	m.sugVP.Height = sugHeight
	m.logVP.Height = logHeight
}

// refresh rebuilds the table rows and viewport contents from the
// station's stores.
func (m *model) refresh() {
	robots := m.st.Selection.Filter(m.st.Robots.Snapshot())
	rows := make([]table.Row, 0, len(robots))
	selected := make(map[string]bool)
	for _, id := range m.st.Selection.Selected() {
		selected[id] = true
	}
	for _, r := range robots {
		name := r.Name
		if selected[r.ID] {
			name = "* " + name
		}
		rows = append(rows, table.Row{
			r.ID,
			name,
			string(r.RobotType),
			string(r.Status),
			fmt.Sprintf("%.0f", r.Health.BatteryPercent),
			fmt.Sprintf("%.0f", r.Health.SignalStrength),
			string(m.st.Autonomy.TierFor(r)),
			formatPosition(r),
		})
	}
	m.table.SetRows(rows)

	m.sugVP.SetContent(m.renderSuggestions())
	if m.showLog {
		m.logVP.SetContent(m.renderChangeLog())
	}
	if m.autoscroll {
		m.logVP.GotoBottom()
	}
}

func (m *model) topSuggestion() (ai.Suggestion, bool) {
	for _, s := range m.st.Suggestions.Sorted() {
		if s.Status == ai.SuggestionPending {
			return s, true
		}
	}
	return ai.Suggestion{}, false
}

func formatPosition(r fleet.Robot) string {
	alt := r.Position.Altitude
	if r.RobotType == fleet.TypeUnderwater && alt < 0 {
		return fmt.Sprintf("%.4f,%.4f d%.0fm", r.Position.Latitude, r.Position.Longitude, -alt)
	}
	return fmt.Sprintf("%.4f,%.4f a%.0fm", r.Position.Latitude, r.Position.Longitude, alt)
}
