package fleet

import "sort"

// MissionStatus is the lifecycle state of a mission.
type MissionStatus string

const (
	MissionDraft     MissionStatus = "draft"
	MissionActive    MissionStatus = "active"
	MissionPaused    MissionStatus = "paused"
	MissionCompleted MissionStatus = "completed"
	MissionAborted   MissionStatus = "aborted"
)

// WaypointStatus tracks progress through a robot's waypoint sequence.
type WaypointStatus string

const (
	WaypointPending   WaypointStatus = "pending"
	WaypointActive    WaypointStatus = "active"
	WaypointCompleted WaypointStatus = "completed"
	WaypointSkipped   WaypointStatus = "skipped"
)

// Waypoint is one step in a robot's mission route.
type Waypoint struct {
	ID         string         `json:"id"`
	Sequence   int            `json:"sequence"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	Altitude   float64        `json:"altitude"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Status     WaypointStatus `json:"status"`
}

// Mission assigns routes to a set of robots. Waypoints maps robot id to
// that robot's ordered waypoint sequence.
type Mission struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Status         MissionStatus         `json:"status"`
	AssignedRobots []string              `json:"assignedRobots"`
	Waypoints      map[string][]Waypoint `json:"waypoints"`
	CreatedAt      float64               `json:"createdAt"`
	UpdatedAt      float64               `json:"updatedAt"`
}

// RouteFor returns a robot's waypoints sorted by sequence index.
// Rendering order must follow the sequence regardless of wire order.
func (m Mission) RouteFor(robotID string) []Waypoint {
	wps := m.Waypoints[robotID]
	out := make([]Waypoint, len(wps))
	copy(out, wps)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}
