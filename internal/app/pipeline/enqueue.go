package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eziosoft/MavlinkStats/internal/domain"
	"github.com/eziosoft/MavlinkStats/internal/ports"
)

var ErrQueueFull = errors.New("message queue full")

// EnqueueWithPolicy applies pol.OnQueueFull when q is at capacity:
// "block" retries every IdleSleep until ctx ends, "drop" and "reject"
// return ErrQueueFull.
func EnqueueWithPolicy(ctx context.Context, q ports.MessageQueue, m *domain.Message, pol ports.Policy, obs ports.Observability) error {
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		if ok := q.Enqueue(m); ok {
			return nil
		}

		switch pol.OnQueueFull {
		case "block":
			if !sleepCtx(ctx, sleep) {
				return ctx.Err()
			}
		case "drop", "reject":
			obs.IncCounter("mavstats_queue_dropped_total", 1)
			obs.LogError("queue_full_drop", fmt.Errorf("queue length exceeded capacity %d", pol.MaxQueueLen))
			return ErrQueueFull
		default:
			obs.LogError("queue_policy_invalid", fmt.Errorf("policy=%s", pol.OnQueueFull))
			return fmt.Errorf("unknown queue policy %q", pol.OnQueueFull)
		}
	}
}
