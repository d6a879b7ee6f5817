package mavstats

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExternalLinkDeliversInOrder(t *testing.T) {
	l := newExternal(t)
	if err := l.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	for _, typ := range []string{"HEARTBEAT", "ATTITUDE"} {
		if err := l.Publish(Message{Type: typ}); err != nil {
			t.Fatalf("Publish returned error: %v", err)
		}
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 queued messages, got %d", l.Len())
	}

	for _, want := range []string{"HEARTBEAT", "ATTITUDE"} {
		msg, err := l.Recv()
		if err != nil || msg == nil || msg.Type != want {
			t.Fatalf("expected %s, got %+v (%v)", want, msg, err)
		}
	}
	if msg, err := l.Recv(); msg != nil || err != nil {
		t.Fatalf("expected empty non-blocking receive, got %+v (%v)", msg, err)
	}
}

func TestExternalLinkDropPolicy(t *testing.T) {
	l, err := NewExternalLink(&ExternalLinkConfig{Policy: Policy{MaxQueueLen: 1, OnQueueFull: "drop"}}, nil)
	if err != nil {
		t.Fatalf("NewExternalLink returned error: %v", err)
	}
	if err := l.Publish(Message{Type: "HEARTBEAT"}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if err := l.Publish(Message{Type: "HEARTBEAT"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestExternalLinkBlockPolicyHonoursContext(t *testing.T) {
	l, err := NewExternalLink(&ExternalLinkConfig{Policy: Policy{MaxQueueLen: 1, IdleSleep: time.Millisecond}}, nil)
	if err != nil {
		t.Fatalf("NewExternalLink returned error: %v", err)
	}
	_ = l.Publish(Message{Type: "HEARTBEAT"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.PublishContext(ctx, Message{Type: "HEARTBEAT"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestExternalLinkCloseDrainsThenReportsClosed(t *testing.T) {
	l := newExternal(t)
	_ = l.Publish(Message{Type: "HEARTBEAT"})
	if err := l.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if err := l.Publish(Message{Type: "ATTITUDE"}); !errors.Is(err, ErrLinkClosed) {
		t.Fatalf("expected ErrLinkClosed, got %v", err)
	}
	if msg, err := l.Recv(); err != nil || msg == nil {
		t.Fatalf("expected queued message after close, got %+v (%v)", msg, err)
	}
	if _, err := l.Recv(); !errors.Is(err, ErrLinkClosed) {
		t.Fatalf("expected ErrLinkClosed once drained, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Connect(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected Connect to wait for ctx, got %v", err)
	}
}

func TestExternalLinkValidation(t *testing.T) {
	if _, err := NewExternalLink(&ExternalLinkConfig{Policy: Policy{OnQueueFull: "explode"}}, nil); err == nil {
		t.Fatalf("expected invalid policy to be rejected")
	}
	l := newExternal(t)
	if err := l.Publish(Message{}); err == nil {
		t.Fatalf("expected empty type to be rejected")
	}
}
