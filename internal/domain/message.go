package domain

import "fmt"

// Participant identifies the sender of a MAVLink message.
type Participant struct {
	SystemID    uint8 `json:"system_id"`
	ComponentID uint8 `json:"component_id"`
}

func (p Participant) String() string {
	return fmt.Sprintf("%d/%d", p.SystemID, p.ComponentID)
}

// Message is the canonical unit of telemetry in MavlinkStats: one decoded
// MAVLink message reduced to what the tracker needs.
type Message struct {
	Type   string       `json:"type"`
	Origin Participant  `json:"origin"`
	Target *Participant `json:"target,omitempty"`
	// Fields holds the decoded payload keyed by snake_case field name.
	// It is shared with every snapshot and must not be mutated.
	Fields  map[string]any `json:"fields"`
	Command *Command       `json:"command,omitempty"`
}

// Command is the typed view of a COMMAND_LONG payload.
type Command struct {
	ID              uint32  `json:"id"`
	Param1          float64 `json:"param1"`
	Param2          float64 `json:"param2"`
	TargetSystem    uint8   `json:"target_system"`
	TargetComponent uint8   `json:"target_component"`
}

// CommandLongType is the type tag of the command class carrying stream requests.
const CommandLongType = "COMMAND_LONG"
