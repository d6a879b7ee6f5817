package mavstats

import (
	"errors"
	"testing"
	"time"
)

func TestNewCallbackSink(t *testing.T) {
	var received []Snapshot
	sink := NewCallbackSink("cb", func(s Snapshot) error {
		received = append(received, s)
		return nil
	})

	input := Snapshot{TakenAt: time.Unix(1, 0), Missing: []string{"ATTITUDE"}}
	if err := sink.WriteSnapshot(input); err != nil {
		t.Fatalf("WriteSnapshot returned error: %v", err)
	}
	if len(received) != 1 || received[0].Missing[0] != "ATTITUDE" {
		t.Fatalf("unexpected snapshots: %+v", received)
	}
	if sink.Name() != "cb" {
		t.Fatalf("unexpected sink name %q", sink.Name())
	}
}

func TestNewCallbackSinkNilHandler(t *testing.T) {
	sink := NewCallbackSink("", nil)
	if err := sink.WriteSnapshot(Snapshot{}); err == nil {
		t.Fatalf("expected error when callback is nil")
	}
	if sink.Name() != "callback" {
		t.Fatalf("expected default name, got %q", sink.Name())
	}
}

func TestNewChannelSinkKeepsLatest(t *testing.T) {
	sink, ch, closeFn := NewChannelSink("chan", 1)

	for i := 1; i <= 3; i++ {
		if err := sink.WriteSnapshot(Snapshot{TakenAt: time.Unix(int64(i), 0)}); err != nil {
			t.Fatalf("WriteSnapshot returned error: %v", err)
		}
	}

	select {
	case got := <-ch:
		if got.TakenAt.Unix() != 3 {
			t.Fatalf("expected latest snapshot, got %v", got.TakenAt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}

	closeFn()
	closeFn()
	if err := sink.WriteSnapshot(Snapshot{}); !errors.Is(err, ErrChannelSinkClosed) {
		t.Fatalf("expected ErrChannelSinkClosed, got %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
}
