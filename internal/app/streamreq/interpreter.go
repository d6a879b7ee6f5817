// Package streamreq recognises peers asking for telemetry at a given rate.
package streamreq

import (
	"fmt"
	"math"
	"time"

	"github.com/eziosoft/MavlinkStats/internal/domain"
)

// UnknownStream is the name recorded for stream ids missing from the table.
const UnknownStream = "UNKNOWN"

// DefaultCommandID is MAV_CMD_SET_MESSAGE_INTERVAL.
const DefaultCommandID = 511

// Config controls which command messages count as stream requests.
type Config struct {
	// Strict requires the command id to equal CommandID; otherwise any
	// COMMAND_LONG is treated as a stream request.
	Strict    *bool             `yaml:"strict"`
	CommandID uint32            `yaml:"command_id"`
	Names     map[uint32]string `yaml:"names"`
}

func (c *Config) ApplyDefaults() {
	if c.Strict == nil {
		strict := true
		c.Strict = &strict
	}
	if c.CommandID == 0 {
		c.CommandID = DefaultCommandID
	}
}

func (c *Config) Validate() error {
	for id, name := range c.Names {
		if name == "" {
			return fmt.Errorf("stream name for id %d is empty", id)
		}
	}
	return nil
}

// IsStrict reports the effective strictness.
func (c Config) IsStrict() bool {
	return c.Strict == nil || *c.Strict
}

// builtinNames are the streams operators most often request from a GCS.
var builtinNames = map[uint32]string{
	33:  "GLOBAL_POSITION_INT",
	42:  "MISSION_CURRENT",
	162: "FENCE_STATUS",
	173: "RANGEFINDER",
}

// Interpreter turns qualifying command messages into StreamRequest entries.
type Interpreter struct {
	strict    bool
	commandID uint32
	names     map[uint32]string
}

// New builds an interpreter. catalog supplies id → name for the active dialect
// and may be nil; cfg.Names wins over both catalog and built-in names.
func New(cfg Config, catalog map[uint32]string) *Interpreter {
	cfg.ApplyDefaults()
	names := make(map[uint32]string, len(catalog)+len(builtinNames)+len(cfg.Names))
	for id, name := range catalog {
		names[id] = name
	}
	for id, name := range builtinNames {
		names[id] = name
	}
	for id, name := range cfg.Names {
		names[id] = name
	}
	return &Interpreter{
		strict:    cfg.IsStrict(),
		commandID: cfg.CommandID,
		names:     names,
	}
}

// Interpret returns a StreamRequest when msg qualifies, nil otherwise.
func (in *Interpreter) Interpret(msg *domain.Message, now time.Time) *domain.StreamRequest {
	if msg == nil || msg.Type != domain.CommandLongType || msg.Command == nil {
		return nil
	}
	cmd := msg.Command
	if in.strict && cmd.ID != in.commandID {
		return nil
	}

	streamID := uint32(0)
	if cmd.Param1 > 0 && cmd.Param1 <= math.MaxUint32 {
		streamID = uint32(cmd.Param1)
	}

	return &domain.StreamRequest{
		Requester:   msg.Origin,
		Target:      domain.Participant{SystemID: cmd.TargetSystem, ComponentID: cmd.TargetComponent},
		StreamID:    streamID,
		StreamName:  in.Name(streamID),
		FrequencyHz: IntervalToFrequency(cmd.Param2),
		ReceivedAt:  now,
	}
}

// Name maps a stream id to its catalog name.
func (in *Interpreter) Name(id uint32) string {
	if name, ok := in.names[id]; ok {
		return name
	}
	return UnknownStream
}

// IntervalToFrequency converts an interval in microseconds to Hz.
// Non-positive intervals (0 = default rate, -1 = disable) have no rate.
func IntervalToFrequency(intervalUS float64) *float64 {
	if intervalUS <= 0 || math.IsNaN(intervalUS) || math.IsInf(intervalUS, 0) {
		return nil
	}
	hz := 1e6 / intervalUS
	return &hz
}
