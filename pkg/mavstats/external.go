package mavstats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eziosoft/MavlinkStats/internal/adapters/queue"
	"github.com/eziosoft/MavlinkStats/internal/app/pipeline"
	"github.com/eziosoft/MavlinkStats/internal/ports"
)

// ErrQueueFull indicates the queue rejected the message according to policy.
var ErrQueueFull = pipeline.ErrQueueFull

// ErrLinkClosed is returned by Publish after Close, and by Recv once the
// remaining queued messages are drained.
var ErrLinkClosed = errors.New("mavstats: external link closed")

// ExternalLinkConfig configures the bounded queue behind an ExternalLink.
type ExternalLinkConfig struct {
	Policy Policy
}

// applyDefaults fills in sane thresholds so callers only override what they need.
func (c *ExternalLinkConfig) applyDefaults() {
	if c.Policy.MaxQueueLen == 0 {
		c.Policy.MaxQueueLen = 10_000
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 5 * time.Millisecond
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = "block"
	}
}

func (c *ExternalLinkConfig) validate() error {
	if c.Policy.MaxQueueLen <= 0 {
		return fmt.Errorf("policy.max_queue_len must be > 0")
	}
	switch c.Policy.OnQueueFull {
	case "block", "drop", "reject":
		return nil
	default:
		return fmt.Errorf("policy.on_queue_full: unknown mode %q", c.Policy.OnQueueFull)
	}
}

// ExternalLink is a Link fed by the caller instead of a MAVLink node, for
// programs that already decode the wire format themselves.
type ExternalLink struct {
	policy Policy
	queue  ports.MessageQueue
	obs    ports.Observability

	mu     sync.Mutex
	closed bool
}

// NewExternalLink builds a link over a bounded in-memory queue. obs may be nil.
func NewExternalLink(cfg *ExternalLinkConfig, obs Observability) (*ExternalLink, error) {
	if cfg == nil {
		cfg = &ExternalLinkConfig{}
	}
	c := *cfg
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	if obs == nil {
		obs = nopObservability{}
	}
	return &ExternalLink{
		policy: c.Policy,
		queue:  queue.NewMemQueue(c.Policy.MaxQueueLen),
		obs:    obs,
	}, nil
}

// Publish enqueues msg according to the queue-full policy.
func (l *ExternalLink) Publish(msg Message) error {
	return l.PublishContext(context.Background(), msg)
}

// PublishContext is Publish with a context bounding the "block" policy.
func (l *ExternalLink) PublishContext(ctx context.Context, msg Message) error {
	if msg.Type == "" {
		return fmt.Errorf("message type is required")
	}
	if l.isClosed() {
		return ErrLinkClosed
	}
	m := msg
	return pipeline.EnqueueWithPolicy(ctx, l.queue, &m, l.policy, l.obs)
}

// Connect succeeds immediately while the link is open. Once closed it
// blocks until ctx ends, like a connector that cannot reach its peer.
func (l *ExternalLink) Connect(ctx context.Context) error {
	if !l.isClosed() {
		return ctx.Err()
	}
	<-ctx.Done()
	return ctx.Err()
}

func (l *ExternalLink) Recv() (*Message, error) {
	if m, ok := l.queue.Dequeue(); ok {
		return m, nil
	}
	if l.isClosed() {
		return nil, ErrLinkClosed
	}
	return nil, nil
}

// Close stops accepting messages. Queued messages are still delivered.
func (l *ExternalLink) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return nil
}

// Len reports the number of queued messages.
func (l *ExternalLink) Len() int {
	return l.queue.Len()
}

func (l *ExternalLink) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

var _ Link = (*ExternalLink)(nil)

type nopObservability struct{}

func (nopObservability) LogInfo(string, ...Field)            {}
func (nopObservability) LogError(string, error, ...Field)    {}
func (nopObservability) LogCritical(string, error, ...Field) {}
func (nopObservability) IncCounter(string, float64)          {}
func (nopObservability) ObserveLatency(string, float64)      {}
func (nopObservability) SetGauge(string, float64)            {}
