package mavstats

import (
	"errors"
	"fmt"
	"sync"
)

// ErrChannelSinkClosed is returned when a channel sink is written to after being closed.
var ErrChannelSinkClosed = errors.New("mavstats: channel sink closed")

// NewCallbackSink adapts a SnapshotHandler into a Sink so callers can plug
// arbitrary functions without defining structs.
func NewCallbackSink(name string, fn SnapshotHandler) Sink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

// NewChannelSink exposes snapshots via a channel; it returns the sink, the
// read-only channel, and a close function the caller should invoke during
// shutdown. When the buffer is full the oldest snapshot is replaced.
func NewChannelSink(name string, buffer int) (Sink, <-chan Snapshot, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 1 {
		buffer = 1
	}
	s := &channelSink{
		name: name,
		ch:   make(chan Snapshot, buffer),
	}
	return s, s.ch, s.close
}

type callbackSink struct {
	name string
	fn   SnapshotHandler
}

func (s *callbackSink) WriteSnapshot(snap Snapshot) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	return s.fn(snap)
}

func (s *callbackSink) Name() string { return s.name }

type channelSink struct {
	name   string
	mu     sync.Mutex
	ch     chan Snapshot
	closed bool
}

func (s *channelSink) WriteSnapshot(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrChannelSinkClosed
	}

	for {
		select {
		case s.ch <- snap:
			return nil
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *channelSink) Name() string { return s.name }

func (s *channelSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
