// Package control serves the local control socket of a running watcher.
//
// One listener carries two protocols, split by cmux:
//   - gRPC (HTTP/2) connections reach the standard grpc.health.v1.Health
//     service, SERVING while the watcher runs and NOT_SERVING otherwise.
//   - Everything else is the newline-delimited JSON protocol of package
//     message: STATUS, PAUSE, RESUME and STOP.
package control

import (
	"errors"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/soheilhy/cmux"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"go.klb.dev/clipfmt/internal/lifecycle"
	"go.klb.dev/clipfmt/internal/message"
	"go.klb.dev/clipfmt/internal/watch"
	"go.klb.dev/clipfmt/internal/wire"
)

// ServiceName is the health-checked service name. The empty name (overall
// server health) mirrors it.
const ServiceName = "clipfmt"

const requestTimeout = 5 * time.Second

// Target is what the control socket drives; *lifecycle.Controller
// implements it.
type Target interface {
	State() lifecycle.State
	Stats() watch.Stats
	Pause()
	Resume()
	Stop()
}

// Info is static metadata reported by STATUS.
type Info struct {
	Version   string
	Strategy  string
	Markers   []string
	StartedAt time.Time
}

// Server answers control requests for one Target.
type Server struct {
	ln     net.Listener
	target Target
	info   Info
	grpc   *grpc.Server
	health *health.Server

	closeOnce sync.Once
}

// NewServer prepares a server on ln. Call Serve to start answering.
func NewServer(ln net.Listener, t Target, info Info) *Server {
	s := &Server{
		ln:     ln,
		target: t,
		info:   info,
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.SetState(t.State())
	return s
}

// SetState publishes the watcher state to health checkers. Pass it to
// lifecycle.Controller.Subscribe.
func (s *Server) SetState(st lifecycle.State) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if st == lifecycle.Running {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks until Close is called.
func (s *Server) Serve() error {
	m := cmux.New(s.ln)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	jsonL := m.Match(cmux.Any())

	var g errgroup.Group
	g.Go(func() error { return ignoreClosed(s.grpc.Serve(grpcL)) })
	g.Go(func() error { return s.serveJSON(jsonL) })
	g.Go(func() error { return ignoreClosed(m.Serve()) })
	return g.Wait()
}

// Close stops accepting and tears down open gRPC streams.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.health.Shutdown()
		_ = s.ln.Close()
		s.grpc.Stop()
	})
}

func (s *Server) serveJSON(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return ignoreClosed(err)
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn)
	wc.SetReadDeadline(requestTimeout)

	req, err := wc.ReadMsg()
	if err != nil {
		slog.Debug("control: bad request", "err", err)
		_ = wc.WriteMsg(message.Errorf("bad request: %v", err))
		return
	}
	slog.Debug("control request", "type", req.Type, "source", req.Source)

	switch req.Type {
	case message.TypeStatus:
		_ = wc.WriteMsg(&message.Message{Type: message.TypeStatusResponse, Status: s.status()})

	case message.TypePause:
		s.target.Pause()
		_ = wc.WriteMsg(&message.Message{Type: message.TypeOK, Status: s.status()})

	case message.TypeResume:
		s.target.Resume()
		_ = wc.WriteMsg(&message.Message{Type: message.TypeOK, Status: s.status()})

	case message.TypeStop:
		slog.Info("stop requested over control socket", "source", req.Source)
		_ = wc.WriteMsg(&message.Message{Type: message.TypeOK})
		s.target.Stop()

	default:
		_ = wc.WriteMsg(message.Errorf("unknown request %q", req.Type))
	}
}

func (s *Server) status() *message.Status {
	st := s.target.Stats()
	return &message.Status{
		State:       s.target.State().String(),
		Version:     s.info.Version,
		PID:         os.Getpid(),
		StartedAt:   s.info.StartedAt,
		Backend:     st.Backend,
		Strategy:    s.info.Strategy,
		Markers:     s.info.Markers,
		Changes:     st.Changes,
		Transformed: st.Transformed,
		Failed:      st.Failed,
		Unmatched:   st.Unmatched,
		ReadErrors:  st.ReadErrors,
		LastRule:    st.LastRule,
		LastError:   st.LastError,
		LastAt:      st.LastAt,
	}
}

func ignoreClosed(err error) error {
	switch {
	case err == nil,
		errors.Is(err, net.ErrClosed),
		errors.Is(err, cmux.ErrListenerClosed),
		errors.Is(err, cmux.ErrServerClosed),
		errors.Is(err, grpc.ErrServerStopped):
		return nil
	}
	return err
}
