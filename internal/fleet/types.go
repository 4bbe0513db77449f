// Robot entity types mirrored from the server wire contract
package fleet

// RobotType classifies the vehicle domain.
type RobotType string

const (
	TypeDrone      RobotType = "drone"
	TypeGround     RobotType = "ground"
	TypeUnderwater RobotType = "underwater"
)

// RobotStatus is the server-reported operational state.
type RobotStatus string

const (
	StatusIdle      RobotStatus = "idle"
	StatusActive    RobotStatus = "active"
	StatusReturning RobotStatus = "returning"
	StatusError     RobotStatus = "error"
	StatusOffline   RobotStatus = "offline"
)

// AutonomyTier governs how much AI-initiated action may proceed without
// operator approval. Tiers are ordered from least to most autonomous.
type AutonomyTier string

const (
	TierManual     AutonomyTier = "manual"
	TierAssisted   AutonomyTier = "assisted"
	TierSupervised AutonomyTier = "supervised"
	TierAutonomous AutonomyTier = "autonomous"
)

// TierRank returns the ordinal position of a tier, manual first.
// Unknown tiers rank below manual.
func TierRank(t AutonomyTier) int {
	switch t {
	case TierManual:
		return 0
	case TierAssisted:
		return 1
	case TierSupervised:
		return 2
	case TierAutonomous:
		return 3
	}
	return -1
}

// ValidTier reports whether t is one of the four known tiers.
func ValidTier(t AutonomyTier) bool {
	return TierRank(t) >= 0
}

// Position holds latitude, longitude, altitude and heading. Negative
// altitude denotes depth for underwater robots. Heading is degrees 0-360.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
}

// Health carries battery and link quality, both 0-100.
type Health struct {
	BatteryPercent float64 `json:"batteryPercent"`
	SignalStrength float64 `json:"signalStrength"`
}

// Robot is the client-side view of one robot. Entities are created or
// replaced wholesale by state.sync, updated by robot.updated, and never
// deleted locally; absence is server-driven.
//
// Timestamps on the wire are unix seconds.
type Robot struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	RobotType    RobotType      `json:"robotType"`
	Status       RobotStatus    `json:"status"`
	Position     Position       `json:"position"`
	Speed        float64        `json:"speed"`
	Health       Health         `json:"health"`
	AutonomyTier AutonomyTier   `json:"autonomyTier,omitempty"`
	LastSeen     float64        `json:"lastSeen"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}
