package mavstats

import (
	"github.com/eziosoft/MavlinkStats/internal/domain"
	"github.com/eziosoft/MavlinkStats/internal/ports"
)

// Message is one classified MAVLink message. Custom links produce these.
type Message = domain.Message

// Participant identifies a system/component pair on the link.
type Participant = domain.Participant

// Command is the typed COMMAND_LONG payload carried by a Message.
type Command = domain.Command

// Snapshot is the point-in-time view served to dashboards and sinks.
type Snapshot = domain.Snapshot

// MessageState is one per-type row of a Snapshot.
type MessageState = domain.MessageState

// StreamRequest is one observed request to stream a message at a rate.
type StreamRequest = domain.StreamRequest

// Health classifies a measured rate against the expected one.
type Health = domain.Health

const (
	HealthGood         = domain.HealthGood
	HealthBad          = domain.HealthBad
	HealthUnclassified = domain.HealthUnclassified
)

// CommandLongType is the type tag stream requests arrive under.
const CommandLongType = domain.CommandLongType

// Link is the upstream message source (MAVLink node, replay, simulator).
type Link = ports.Link

// Sink receives a Snapshot every publish interval.
type Sink = ports.Sink

// MessageQueue is the bounded FIFO behind ExternalLink.
type MessageQueue = ports.MessageQueue

// Observability emits metrics and structured logs.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// SnapshotHandler is invoked with every published snapshot.
type SnapshotHandler func(Snapshot) error
