package emulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/moffa90/go-jnflash/protocol"
)

// Server runs a Device over a byte stream.
type Server struct {
	device *Device
}

// NewServer creates a Server answering with device.
func NewServer(device *Device) *Server {
	if device == nil {
		panic("device cannot be nil")
	}
	return &Server{device: device}
}

// Serve decodes request frames from rw and writes each reply until the peer
// goes away or ctx is cancelled.
//
// Frames failing the checksum are logged and dropped. Read timeouts are
// treated as an idle line. A closed peer ends the loop with a nil error; a
// failed write ends it with a *protocol.TransportError. If rw is an
// io.Closer it is closed when ctx is cancelled so a blocked read returns.
func (s *Server) Serve(ctx context.Context, rw io.ReadWriter) error {
	if c, ok := rw.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := protocol.Decode(rw)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			switch {
			case protocol.IsChecksumError(err):
				s.device.logError("dropping corrupted frame", "error", err)
				continue
			case errors.Is(err, protocol.ErrTimeout):
				continue
			case peerClosed(err):
				s.device.logDebug("peer closed", "error", err)
				return nil
			case protocol.IsFramingError(err):
				s.device.logError("dropping malformed frame", "error", err)
				continue
			default:
				return err
			}
		}

		s.device.logDebug("received frame",
			"type", fmt.Sprintf("0x%02X", frame.Type),
			"length", frame.Length,
		)

		respType, resp, ok := s.device.Respond(frame.Type, frame.Payload)
		if !ok {
			continue
		}

		out, err := protocol.Encode(respType, resp)
		if err != nil {
			return err
		}

		if _, err := rw.Write(out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &protocol.TransportError{Op: "write", Err: err}
		}
	}
}

// ServeListener accepts peers from ln and serves them one at a time until
// ctx is cancelled. The listener is closed on return.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer func() { _ = ln.Close() }()

	s.device.logInfo("emulator listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		remote := conn.RemoteAddr().String()
		s.device.logInfo("peer connected", "remote", remote)

		err = s.Serve(ctx, conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			s.device.logError("session failed", "remote", remote, "error", err)
			continue
		}
		s.device.logInfo("peer disconnected", "remote", remote)
	}
}

// peerClosed reports whether err means the other end of the stream is gone.
func peerClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}
