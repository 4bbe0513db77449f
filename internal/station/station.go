// Package station wires the stores, the API client and the websocket
// channel into one operator station. All inbound state flows through
// Dispatch; the console and the headless recorder both sit on top of it.
package station

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/stygmatic/Argus/internal/ai"
	"github.com/stygmatic/Argus/internal/archive"
	"github.com/stygmatic/Argus/internal/autonomy"
	"github.com/stygmatic/Argus/internal/command"
	"github.com/stygmatic/Argus/internal/fleet"
	"github.com/stygmatic/Argus/internal/ui"
	"github.com/stygmatic/Argus/internal/ws"
)

// Options configures a station.
type Options struct {
	ServerURL string
	WSURL     string // explicit channel URL; derived from ServerURL if empty
	Archive   archive.Writer
	Log       *slog.Logger
}

// Station is the composition root: one set of stores, one channel, one
// dispatcher. Nothing in here is a package-level global.
type Station struct {
	Robots      *fleet.RobotStore
	Missions    *fleet.MissionStore
	Commands    *command.Store
	Suggestions *ai.Store
	Autonomy    *autonomy.Engine
	Dispatcher  *command.Dispatcher
	Selection   *ui.Selection
	ConnState   *ws.State
	Conn        *ws.Client

	archive archive.Writer
	log     *slog.Logger
	notify  func()
}

// New builds a station around the given API client. The apiClient must
// satisfy both the ai.Client and autonomy.TierClient contracts; the
// concrete api.Client does.
func New(opts Options, apiClient interface {
	ai.Client
	autonomy.TierClient
}) (*Station, error) {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	s := &Station{
		Robots:     fleet.NewRobotStore(),
		Missions:   fleet.NewMissionStore(),
		Commands:   command.NewStore(),
		Dispatcher: command.NewDispatcher(log),
		Selection:  ui.NewSelection(),
		ConnState:  ws.NewState(),
		archive:    opts.Archive,
		log:        log,
	}
	s.Suggestions = ai.NewStore(apiClient, log)
	s.Autonomy = autonomy.NewEngine(s.Robots, apiClient, s.Suggestions, log)

	wsURL, err := ws.ResolveURL(opts.WSURL, opts.ServerURL)
	if err != nil {
		return nil, err
	}
	s.Conn = ws.NewClient(wsURL, s.Dispatch, s.ConnState, log)
	s.Conn.OnOpen = func(send ws.SendFunc) {
		s.Dispatcher.SetSend(command.SendFunc(send))
		s.signal()
	}
	s.Conn.OnClose = func() {
		s.Dispatcher.SetSend(nil)
		s.signal()
	}
	return s, nil
}

// SetNotify registers a hook invoked after every applied inbound message
// and every connection state change. The console uses it to repaint.
func (s *Station) SetNotify(fn func()) { s.notify = fn }

func (s *Station) signal() {
	if s.notify != nil {
		s.notify()
	}
}

// Start opens the channel. Reconnects are handled internally.
func (s *Station) Start() { s.Conn.Connect() }

// Stop tears the channel down and cancels any pending reconnect.
func (s *Station) Stop() { s.Conn.Close() }

type syncPayload struct {
	Robots   map[string]fleet.Robot   `json:"robots"`
	Missions map[string]fleet.Mission `json:"missions"`
}

// Dispatch applies one inbound envelope to the stores. Runs on the
// channel's read goroutine, in arrival order. Unknown types and
// malformed payloads are dropped.
func (s *Station) Dispatch(env ws.Envelope) {
	switch env.Type {
	case "state.sync":
		var p syncPayload
		if !s.decode(env, &p) {
			return
		}
		s.Robots.ReplaceAll(p.Robots)
		if p.Missions != nil {
			s.Missions.ReplaceAll(p.Missions)
		}

	case "robot.updated":
		var r fleet.Robot
		if !s.decode(env, &r) || r.ID == "" {
			return
		}
		s.Robots.Upsert(r)
		s.archiveRobot(r, env.Timestamp)

	case "command.status":
		var c command.Command
		if !s.decode(env, &c) || c.ID == "" {
			return
		}
		s.Commands.Upsert(c)

	case "mission.updated":
		var m fleet.Mission
		if !s.decode(env, &m) || m.ID == "" {
			return
		}
		s.Missions.Upsert(m)

	case "ai.suggestion":
		var sug ai.Suggestion
		if !s.decode(env, &sug) || sug.ID == "" {
			return
		}
		s.Suggestions.Upsert(sug)

	case "autonomy.changed":
		var entry autonomy.ChangeEntry
		if !s.decode(env, &entry) || entry.RobotID == "" {
			return
		}
		s.Autonomy.ApplyChange(entry)

	case "autonomy.countdown":
		var cd autonomy.Countdown
		if !s.decode(env, &cd) || cd.SuggestionID == "" {
			return
		}
		s.Autonomy.AddCountdown(cd)

	default:
		// Unknown types are forward-compatible noise.
		return
	}
	s.signal()
}

func (s *Station) decode(env ws.Envelope, v any) bool {
	if err := json.Unmarshal(env.Payload, v); err != nil {
		s.log.Warn("dropping malformed payload", "type", env.Type, "error", err)
		return false
	}
	return true
}

func (s *Station) archiveRobot(r fleet.Robot, isoTS string) {
	if s.archive == nil {
		return
	}
	ts, err := time.Parse(time.RFC3339, isoTS)
	if err != nil {
		ts = time.Now().UTC()
	}
	if err := s.archive.Write(archive.FromRobot(r, ts)); err != nil {
		s.log.Warn("archive write failed", "robot", r.ID, "error", err)
	}
}
