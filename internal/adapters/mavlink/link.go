package mavlink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/message"

	"github.com/eziosoft/MavlinkStats/internal/domain"
	"github.com/eziosoft/MavlinkStats/internal/ports"
)

var (
	// ErrLinkLost is returned by Recv once the node has no open channel left.
	ErrLinkLost = errors.New("mavlink: link lost")
	// ErrHandshakeTimeout means no heartbeat arrived within HeartbeatTimeout.
	ErrHandshakeTimeout = errors.New("mavlink: no heartbeat received")
	// ErrNotConnected is returned by Recv before Connect succeeded.
	ErrNotConnected = errors.New("mavlink: not connected")
)

// event is what the node pump hands to the link.
type event struct {
	systemID    uint8
	componentID uint8
	msg         message.Message
	parseErr    error
	closed      bool
}

// session is one open gomavlib node.
type session struct {
	events <-chan event
	write  func(message.Message)
	close  func()
}

type opener func(conf gomavlib.NodeConf) (*session, error)

func openNode(conf gomavlib.NodeConf) (*session, error) {
	node, err := gomavlib.NewNode(conf)
	if err != nil {
		return nil, err
	}

	out := make(chan event, 256)
	done := make(chan struct{})
	go pump(node.Events(), out, done)

	var once sync.Once
	return &session{
		events: out,
		write:  func(m message.Message) { node.WriteMessageAll(m) },
		close: func() {
			once.Do(func() {
				close(done)
				node.Close()
			})
		},
	}, nil
}

// pump translates node events until in closes or done fires. A UDP server
// opens one channel per peer, so the link only counts as closed once the last
// open channel goes away.
func pump(in <-chan gomavlib.Event, out chan<- event, done <-chan struct{}) {
	defer close(out)
	open := 0
	for evt := range in {
		var ev event
		switch e := evt.(type) {
		case *gomavlib.EventFrame:
			ev = event{systemID: e.SystemID(), componentID: e.ComponentID(), msg: e.Message()}
		case *gomavlib.EventChannelOpen:
			open++
			continue
		case *gomavlib.EventChannelClose:
			if open > 0 {
				open--
			}
			if open > 0 {
				continue
			}
			ev = event{closed: true}
		case *gomavlib.EventParseError:
			ev = event{parseErr: e.Error}
		default:
			continue
		}
		select {
		case out <- ev:
		case <-done:
			return
		}
	}
}

// Link is the reconnecting MAVLink transport connector.
type Link struct {
	cfg      Config
	obs      ports.Observability
	nodeConf gomavlib.NodeConf
	dialect  dialectInfo
	open     opener

	mu   sync.Mutex
	sess *session
}

func NewLink(cfg Config, obs ports.Observability) (*Link, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if obs == nil {
		return nil, errors.New("observability is required")
	}

	endpoint, err := ParseConnection(cfg.Connection)
	if err != nil {
		return nil, err
	}
	d, _ := lookupDialect(cfg.Dialect)

	return &Link{
		cfg: cfg,
		obs: obs,
		nodeConf: gomavlib.NodeConf{
			Endpoints:        []gomavlib.EndpointConf{endpoint},
			Dialect:          d.dialect,
			OutVersion:       gomavlib.V2,
			OutSystemID:      cfg.SystemID,
			OutComponentID:   cfg.ComponentID,
			HeartbeatDisable: true,
		},
		dialect: d,
		open:    openNode,
	}, nil
}

// Catalog maps message ids of the configured dialect to type tags.
func (l *Link) Catalog() map[uint32]string {
	return Catalog(l.cfg.Dialect)
}

// Connect drops any current session and retries until a heartbeat is seen.
// Failures are logged and retried after RetryBackoff; only ctx ends the loop.
func (l *Link) Connect(ctx context.Context) error {
	l.dropSession()

	for attempt := 1; ; attempt++ {
		l.obs.IncCounter("mavstats_connect_attempts_total", 1)
		l.obs.LogInfo("mavlink_connecting",
			ports.Field{Key: "connection", Value: l.cfg.Connection},
			ports.Field{Key: "attempt", Value: attempt})

		start := time.Now()
		sess, err := l.handshake(ctx)
		if err == nil {
			l.obs.ObserveLatency("mavstats_connect_seconds", time.Since(start).Seconds())
			l.obs.LogInfo("mavlink_connected", ports.Field{Key: "connection", Value: l.cfg.Connection})
			l.mu.Lock()
			l.sess = sess
			l.mu.Unlock()
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		l.obs.LogError("mavlink_connect_failed", err,
			ports.Field{Key: "attempt", Value: attempt},
			ports.Field{Key: "retry_in", Value: l.cfg.RetryBackoff.String()})

		timer := time.NewTimer(l.cfg.RetryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Link) handshake(ctx context.Context) (*session, error) {
	sess, err := l.open(l.nodeConf)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.cfg.Connection, err)
	}

	timer := time.NewTimer(l.cfg.HeartbeatTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			sess.close()
			return nil, ctx.Err()
		case <-timer.C:
			sess.close()
			return nil, fmt.Errorf("%w within %s", ErrHandshakeTimeout, l.cfg.HeartbeatTimeout)
		case ev, ok := <-sess.events:
			if !ok || ev.closed {
				sess.close()
				return nil, ErrLinkLost
			}
			if ev.msg != nil && TypeTag(ev.msg) == heartbeatType {
				sess.write(l.dialect.announce())
				return sess, nil
			}
		}
	}
}

// Recv returns the next decoded message without blocking.
func (l *Link) Recv() (*domain.Message, error) {
	l.mu.Lock()
	sess := l.sess
	l.mu.Unlock()
	if sess == nil {
		return nil, ErrNotConnected
	}

	select {
	case ev, ok := <-sess.events:
		if !ok || ev.closed {
			return nil, ErrLinkLost
		}
		if ev.parseErr != nil {
			l.obs.IncCounter("mavstats_parse_errors_total", 1)
			return nil, nil
		}
		if ev.msg == nil {
			return nil, nil
		}
		msg := Classify(ev.systemID, ev.componentID, ev.msg)
		return &msg, nil
	default:
		return nil, nil
	}
}

func (l *Link) Close() error {
	l.dropSession()
	return nil
}

func (l *Link) dropSession() {
	l.mu.Lock()
	sess := l.sess
	l.sess = nil
	l.mu.Unlock()
	if sess != nil {
		sess.close()
	}
}

var _ ports.Link = (*Link)(nil)
