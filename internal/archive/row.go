// Telemetry archive rows with greptime tags
package archive

import (
	"os"
	"time"

	"github.com/stygmatic/Argus/internal/fleet"
)

// Row is one archived robot telemetry record.
type Row struct {
	RobotID   string    `json:"robot_id"`   // TAG
	Name      string    `json:"name"`       // FIELD
	RobotType string    `json:"robot_type"` // TAG
	Status    string    `json:"status"`     // FIELD
	Lat       float64   `json:"lat"`        // FIELD
	Lon       float64   `json:"lon"`        // FIELD
	Alt       float64   `json:"alt"`        // FIELD
	Heading   float64   `json:"heading"`    // FIELD
	Speed     float64   `json:"speed"`      // FIELD
	Battery   float64   `json:"battery"`    // FIELD
	Signal    float64   `json:"signal"`     // FIELD
	Timestamp time.Time `json:"ts"`         // TIME INDEX
}

// TableName holds the archive table name. It defaults to
// "robot_telemetry" but can be overridden via the ARGUS_ARCHIVE_TABLE
// environment variable.
var TableName = func() string {
	if env := os.Getenv("ARGUS_ARCHIVE_TABLE"); env != "" {
		return env
	}
	return "robot_telemetry"
}()

// FromRobot flattens a robot entity into an archive row.
func FromRobot(r fleet.Robot, ts time.Time) Row {
	return Row{
		RobotID:   r.ID,
		Name:      r.Name,
		RobotType: string(r.RobotType),
		Status:    string(r.Status),
		Lat:       r.Position.Latitude,
		Lon:       r.Position.Longitude,
		Alt:       r.Position.Altitude,
		Heading:   r.Position.Heading,
		Speed:     r.Speed,
		Battery:   r.Health.BatteryPercent,
		Signal:    r.Health.SignalStrength,
		Timestamp: ts.UTC(),
	}
}

// ToRobot rebuilds a robot entity from an archived row, used by replay
// to feed rows back through the normal update path.
func (r Row) ToRobot() fleet.Robot {
	return fleet.Robot{
		ID:        r.RobotID,
		Name:      r.Name,
		RobotType: fleet.RobotType(r.RobotType),
		Status:    fleet.RobotStatus(r.Status),
		Position: fleet.Position{
			Latitude:  r.Lat,
			Longitude: r.Lon,
			Altitude:  r.Alt,
			Heading:   r.Heading,
		},
		Speed:    r.Speed,
		Health:   fleet.Health{BatteryPercent: r.Battery, SignalStrength: r.Signal},
		LastSeen: float64(r.Timestamp.UnixMilli()) / 1000,
	}
}
