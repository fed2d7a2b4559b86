// Package server exposes a slot device over stream sockets. Each connection
// is a session that may hold any number of handles; handles are only
// addressable from the session that opened them and are closed when it ends.
package server

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/Iron-Ham/msgslot/internal/config"
	"github.com/Iron-Ham/msgslot/internal/event"
	"github.com/Iron-Ham/msgslot/internal/logging"
	"github.com/Iron-Ham/msgslot/internal/slot"
	"github.com/Iron-Ham/msgslot/internal/wire"
)

// Server accepts connections and dispatches their requests to a Device.
type Server struct {
	dev   *slot.Device
	codec *wire.Codec
	log   *logging.Logger

	maxFrame    int
	idleTimeout atomic.Int64 // nanoseconds, 0 = none

	nextSession atomic.Uint64
	wg          conc.WaitGroup

	mu       sync.Mutex
	sessions map[uint64]*session
	closed   bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l.WithComponent("server")
		}
	}
}

// WithMaxFrame bounds the size of incoming request frames.
func WithMaxFrame(n int) Option {
	return func(s *Server) {
		s.maxFrame = n
	}
}

// WithIdleTimeout closes sessions that send nothing for d. Zero disables it.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.idleTimeout.Store(int64(d))
	}
}

// WithEventLog logs every device event published on bus at DEBUG.
func WithEventLog(bus *event.Bus) Option {
	return func(s *Server) {
		if bus == nil {
			return
		}
		bus.SubscribeAll(func(e event.Event) {
			s.log.Debug("device event", eventAttrs(e)...)
		})
	}
}

// New creates a server for dev.
func New(dev *slot.Device, opts ...Option) (*Server, error) {
	codec, err := wire.NewCodec()
	if err != nil {
		return nil, err
	}
	s := &Server{
		dev:      dev,
		codec:    codec,
		log:      logging.NopLogger(),
		maxFrame: wire.DefaultMaxFrame,
		sessions: make(map[uint64]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Serve accepts connections on l until ctx is cancelled or l fails. On return
// every session has been closed and its handles released.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.log.Info("listening", "network", l.Addr().Network(), "address", l.Addr().String())

	stop := context.AfterFunc(ctx, func() { _ = l.Close() })
	defer stop()

	var acceptErr error
	for {
		c, err := l.Accept()
		if err != nil {
			if ctx.Err() == nil {
				acceptErr = err
				s.log.Error("accept failed", "error", err.Error())
			}
			break
		}
		if !s.start(c) {
			_ = c.Close()
			break
		}
	}

	s.closeSessions()
	s.wg.Wait()
	s.log.Info("stopped serving", "address", l.Addr().String())
	return acceptErr
}

// Close stops all sessions. Listeners passed to Serve are closed by
// cancelling the context given to Serve.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.closeSessions()
	return nil
}

// Reconfigure applies the runtime-adjustable parts of cfg: the admission
// policy and the idle timeout. Existing handles are unaffected.
func (s *Server) Reconfigure(cfg *config.Config) {
	s.dev.SetPolicy(slot.PolicyFor(cfg.Device.ExclusiveOpen, cfg.Device.MaxHandles))
	s.idleTimeout.Store(int64(cfg.Server.IdleTimeout))
	s.log.Info("configuration reloaded",
		"policy", s.dev.Policy().Name(),
		"idle_timeout", cfg.Server.IdleTimeout.String())
}

// Sessions returns the number of connected sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) start(c net.Conn) bool {
	ss := &session{
		id:      s.nextSession.Add(1),
		srv:     s,
		conn:    wire.NewConn(c, s.codec, s.maxFrame),
		handles: make(map[uint64]*slot.Handle),
	}
	ss.log = s.log.With("session", ss.id)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.sessions[ss.id] = ss
	s.mu.Unlock()

	s.wg.Go(func() {
		var pc panics.Catcher
		pc.Try(ss.serve)
		if r := pc.Recovered(); r != nil {
			ss.log.Error("session panicked", "panic", r.String())
		}
		s.mu.Lock()
		delete(s.sessions, ss.id)
		s.mu.Unlock()
	})
	return true
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, ss := range s.sessions {
		sessions = append(sessions, ss)
	}
	s.mu.Unlock()

	for _, ss := range sessions {
		_ = ss.conn.Close()
	}
}

func (s *Server) idle() time.Duration {
	return time.Duration(s.idleTimeout.Load())
}

func eventAttrs(e event.Event) []any {
	attrs := []any{"type", e.EventType()}
	switch ev := e.(type) {
	case event.HandleOpenedEvent:
		attrs = append(attrs, "instance", ev.Instance, "open_handles", ev.Open)
	case event.HandleClosedEvent:
		attrs = append(attrs, "instance", ev.Instance, "channel", ev.Channel)
	case event.OpenRefusedEvent:
		attrs = append(attrs, "instance", ev.Instance, "policy", ev.Policy)
	case event.ChannelCreatedEvent:
		attrs = append(attrs, "instance", ev.Instance, "channel", ev.Channel)
	case event.MessageWrittenEvent:
		attrs = append(attrs, "instance", ev.Instance, "channel", ev.Channel, "length", ev.Length)
	}
	return attrs
}
