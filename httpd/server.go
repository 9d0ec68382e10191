package httpd

import (
	"context"
	"errors"
	"net"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"dqx0.com/go/servers/httpd/internal/exec"
	"dqx0.com/go/servers/internal/obs"
)

const (
	defaultAddr        = "0.0.0.0:8080"
	defaultIdleTimeout = 30 * time.Second
)

// Server accepts connections and runs one session per connection on a
// shared worker pool. The zero value is usable; Serve applies
// defaults.
type Server struct {
	Addr    string
	Handler Handler
	// Workers sets the pool size; 0 means GOMAXPROCS, minimum 1.
	Workers int
	// IdleTimeout bounds how long a read may wait for a complete
	// request; 0 means 30s. Writes carry no deadline.
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodyBytes   int64

	Logger obs.Logger
	Meter  obs.Meter

	mu         sync.Mutex
	ln         net.Listener
	pool       *exec.Pool
	conns      *xsync.MapOf[*session, struct{}]
	inShutdown atomic.Bool
}

// ListenAndServe binds s.Addr and serves until Shutdown or a fatal
// listener error.
func (s *Server) ListenAndServe() error {
	addr := s.Addr
	if addr == "" {
		addr = defaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve runs the accept loop on ln. Each accepted connection gets a
// session bound to a fresh strand of the pool; the next accept is
// issued immediately, never serialized behind a connection's
// lifetime. Accept errors are reported and skipped; the loop ends
// only when the listener is closed, returning ErrServerClosed after
// Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.inShutdown.Load() {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerClosed
	}
	s.ln = ln
	if s.pool == nil {
		s.pool = exec.NewPool(s.workers())
	}
	if s.conns == nil {
		s.conns = xsync.NewMapOf[*session, struct{}]()
	}
	pool := s.pool
	s.mu.Unlock()

	s.logf(obs.Info, "accepting connections on %s", ln.Addr())
	for {
		c, err := ln.Accept()
		if err != nil {
			if s.inShutdown.Load() || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}
			s.report("accept", err)
			continue
		}
		s.metricCounter("httpd_conns_total", 1)
		sess := newSession(s, c, pool.Strand())
		s.conns.Store(sess, struct{}{})
		sess.run()
	}
}

// Shutdown closes the listener, aborts active connections, waits for
// their sessions to finish (bounded by ctx), and stops the pool.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.mu.Lock()
	ln := s.ln
	pool := s.pool
	conns := s.conns
	s.mu.Unlock()
	if ln != nil {
		_ = ln.Close()
	}
	if conns != nil {
		conns.Range(func(sess *session, _ struct{}) bool {
			sess.abort()
			return true
		})
		t := time.NewTicker(10 * time.Millisecond)
		defer t.Stop()
		for conns.Size() > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	if pool != nil {
		pool.Close()
	}
	return nil
}

func (s *Server) dropSession(sess *session) {
	s.conns.Delete(sess)
}

func (s *Server) activeHandler() Handler {
	if s.Handler != nil {
		return s.Handler
	}
	return HandlerFunc(func(r *Request, respond func(*Response)) {
		respond(NewStringResponse(404, "not found", r.KeepAlive()))
	})
}

func (s *Server) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	return n
}

func (s *Server) idleTimeout() time.Duration {
	if s.IdleTimeout > 0 {
		return s.IdleTimeout
	}
	return defaultIdleTimeout
}

func (s *Server) headerLimit() int {
	if s.MaxHeaderBytes <= 0 {
		return 8 << 10
	}
	return s.MaxHeaderBytes
}

func (s *Server) totalHeaderLimit() int {
	return 8 * s.headerLimit()
}

// traceRequest dumps method, target and headers of a received request.
func (s *Server) traceRequest(r *Request) {
	if s.Logger == nil {
		return
	}
	var sb strings.Builder
	r.Header.Each(func(k, v string) bool {
		sb.WriteString("  ")
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(v)
		return true
	})
	s.logf(obs.Debug, "[%s] %s %s%s", r.RequestID, r.Method, r.Target, sb.String())
}

func (s *Server) logf(level obs.Level, format string, args ...interface{}) {
	if s.Logger == nil {
		return
	}
	s.Logger.Logf(level, format, args...)
}

// report delivers an (operation, error) pair to the sink. It never
// alters control flow; callers decide whether the error is terminal.
func (s *Server) report(op string, err error) {
	s.logf(obs.Error, "%s: %v", op, err)
	s.metricCounter("httpd_errors_total", 1, obs.Label{Key: "op", Value: op})
}

func (s *Server) metricCounter(name string, value float64, labels ...obs.Label) {
	if s.Meter == nil {
		return
	}
	s.Meter.Counter(name, value, labels...)
}
