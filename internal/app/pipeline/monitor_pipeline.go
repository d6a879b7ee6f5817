package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/eziosoft/MavlinkStats/internal/app/streamreq"
	"github.com/eziosoft/MavlinkStats/internal/app/tracker"
	"github.com/eziosoft/MavlinkStats/internal/domain"
	"github.com/eziosoft/MavlinkStats/internal/ports"
)

type Deps struct {
	Link     ports.Link
	Store    *tracker.Store
	Requests *streamreq.Interpreter
	Policy   ports.Policy
	Obs      ports.Observability
	Now      func() time.Time
}

// RunMonitorPipeline connects the link and ingests until ctx is cancelled.
// A lost link is logged and reconnected; the loop itself never gives up.
func RunMonitorPipeline(ctx context.Context, d Deps) error {
	if d.Link == nil || d.Store == nil || d.Requests == nil || d.Obs == nil {
		return errors.New("pipeline: link, store, interpreter and observability are required")
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	idle := d.Policy.IdleSleep
	if idle <= 0 {
		idle = 5 * time.Millisecond
	}
	defer d.Link.Close()

	if err := d.Link.Connect(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := d.Link.Recv()
		if err != nil {
			d.Obs.LogError("link_lost", err)
			d.Obs.IncCounter("mavstats_link_lost_total", 1)
			if err := d.Link.Connect(ctx); err != nil {
				return err
			}
			continue
		}

		now := d.Now()
		if msg != nil {
			ingest(d, msg, now)
		}

		if evicted := d.Store.Sweep(now, d.Policy.StaleAfter); len(evicted) > 0 {
			d.Obs.IncCounter("mavstats_evictions_total", float64(len(evicted)))
		}

		if msg == nil && !sleepCtx(ctx, idle) {
			return ctx.Err()
		}
	}
}

func ingest(d Deps, msg *domain.Message, now time.Time) {
	req := d.Requests.Interpret(msg, now)
	d.Store.Observe(msg, req, now)
	d.Obs.IncCounter("mavstats_messages_total", 1)

	if req == nil {
		return
	}
	d.Obs.IncCounter("mavstats_stream_requests_total", 1)
	fields := []ports.Field{
		{Key: "requester", Value: req.Requester.String()},
		{Key: "target", Value: req.Target.String()},
		{Key: "stream", Value: req.StreamName},
	}
	if req.FrequencyHz != nil {
		fields = append(fields, ports.Field{Key: "hz", Value: *req.FrequencyHz})
	}
	d.Obs.LogInfo("stream_request", fields...)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
