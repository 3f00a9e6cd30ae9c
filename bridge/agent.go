package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/moffa90/go-jnflash/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Agent accepts tunnel connections and relays each one to the line.
type Agent struct {
	logger

	line *Line
	cfg  Config
	wg   sync.WaitGroup // TCP sessions started by Serve
	ws   sync.WaitGroup // WebSocket sessions
}

// NewAgent creates an Agent for line. Options not given fall back to the
// line's configuration.
func NewAgent(line *Line, opts ...Option) *Agent {
	cfg := line.cfg
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Agent{
		logger: logger{cfg.Logger},
		line:   line,
		cfg:    cfg,
	}
}

// Serve accepts raw TCP tunnels from ln until ctx is cancelled. It closes
// ln and waits for active sessions before returning.
func (a *Agent) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer a.wg.Wait()

	a.logInfo("bridge listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.handleConn(ctx, conn)
		}()
	}
}

func (a *Agent) handleConn(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()

	lease, err := a.line.Acquire()
	if err != nil {
		a.refuse(remote, err)
		_ = conn.Close()
		return
	}

	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	a.session(ctx, conn, lease, remote)
}

// WebSocketHandler serves the same tunnel over WebSocket binary messages.
// A request made while the line is busy gets 503 Service Unavailable.
// Sessions end when the request context is cancelled.
func (a *Agent) WebSocketHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lease, err := a.line.Acquire()
		if err != nil {
			a.refuse(r.RemoteAddr, err)
			if errors.Is(err, ErrLineBusy) {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
			} else {
				http.Error(w, "line unavailable", http.StatusInternalServerError)
			}
			return
		}

		// Counted before the hijack, while http.Server still tracks the request.
		a.ws.Add(1)
		defer a.ws.Done()

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			lease.Release()
			a.logError("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		a.session(r.Context(), transport.NewWebSocketConn(ws), lease, r.RemoteAddr)
	})
}

// Wait blocks until every WebSocket session has ended. Hijacked connections
// outlive http.Server.Shutdown, so callers serving WebSocketHandler should
// cancel the server's BaseContext and then Wait before closing the line.
func (a *Agent) Wait() {
	a.ws.Wait()
}

func (a *Agent) refuse(remote string, err error) {
	if errors.Is(err, ErrLineBusy) {
		a.logInfo("refusing tunnel", "remote", remote, "reason", "line busy")
		return
	}
	a.logError("failed to acquire line", "remote", remote, "error", err)
}

// session relays between tunnel and line until either side fails or ctx is
// cancelled. The lease is released when both directions have stopped.
func (a *Agent) session(ctx context.Context, tunnel transport.DeadlineConn, lease *Lease, remote string) {
	defer lease.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stats := newSessionStats()
	a.logInfo("session started", "remote", remote)

	errc := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		errc <- a.pumpToLine(tunnel, lease, stats)
	}()
	go func() {
		defer wg.Done()
		errc <- a.pumpToTunnel(ctx, tunnel, lease, stats)
	}()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
	}

	cancel()
	_ = tunnel.Close()
	wg.Wait()

	kv := append([]interface{}{"remote", remote}, stats.keyValues()...)
	switch {
	case err == nil || isDisconnect(err):
		a.logInfo("session ended", kv...)
	case isIdle(err):
		a.logInfo("session idle, closing", kv...)
	default:
		a.logError("session failed", append(kv, "error", err)...)
	}
}

// pumpToLine copies tunnel bytes to the line. Each tunnel read is bounded
// by IdleTimeout.
func (a *Agent) pumpToLine(tunnel transport.DeadlineConn, lease *Lease, stats *sessionStats) error {
	buf := make([]byte, 512)

	for {
		if err := tunnel.SetReadDeadline(time.Now().Add(a.cfg.IdleTimeout)); err != nil {
			return err
		}

		n, err := tunnel.Read(buf)
		if n > 0 {
			if _, werr := lease.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write line: %w", werr)
			}
			stats.addToLine(n)
		}
		if err != nil {
			return err
		}
	}
}

// pumpToTunnel copies line bytes to the tunnel. Line reads return every
// PollInterval so cancellation is noticed.
func (a *Agent) pumpToTunnel(ctx context.Context, tunnel io.Writer, lease *Lease, stats *sessionStats) error {
	buf := make([]byte, 512)

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := lease.Read(buf)
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}
		if n == 0 {
			continue
		}

		if _, err := tunnel.Write(buf[:n]); err != nil {
			return err
		}
		stats.addToTunnel(n)
	}
}

func isDisconnect(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}

func isIdle(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
