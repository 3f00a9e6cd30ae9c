package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultPort is the TCP port a bridge agent listens on.
const DefaultPort = 5169

// Kind identifies how a target is reached.
type Kind int

const (
	KindSerial Kind = iota
	KindTCP
	KindWebSocket
)

func (k Kind) String() string {
	switch k {
	case KindSerial:
		return "serial"
	case KindTCP:
		return "tcp"
	case KindWebSocket:
		return "websocket"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Target is a parsed channel address.
type Target struct {
	Kind Kind

	// Address is a device path for serial targets, host:port for TCP
	// targets and the full URL for WebSocket targets.
	Address string
}

func (t Target) String() string {
	return t.Kind.String() + ":" + t.Address
}

// Channel is a bidirectional byte stream with bounded reads.
type Channel interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// ParseTarget classifies a target string.
//
// Explicit schemes win. Without one, a path or COM port name is a serial
// line and anything of the form host:port is a TCP tunnel.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, fmt.Errorf("empty target")
	}

	if rest, ok := strings.CutPrefix(s, "serial://"); ok {
		if rest == "" {
			return Target{}, fmt.Errorf("serial target %q has no device path", s)
		}
		return Target{Kind: KindSerial, Address: rest}, nil
	}

	if strings.HasPrefix(s, "ws://") || strings.HasPrefix(s, "wss://") {
		u, err := url.Parse(s)
		if err != nil {
			return Target{}, fmt.Errorf("invalid websocket target %q: %w", s, err)
		}
		if u.Host == "" {
			return Target{}, fmt.Errorf("websocket target %q has no host", s)
		}
		if u.Path == "" {
			u.Path = "/ws"
		}
		return Target{Kind: KindWebSocket, Address: u.String()}, nil
	}

	if rest, ok := strings.CutPrefix(s, "tcp://"); ok {
		addr, err := hostPort(rest)
		if err != nil {
			return Target{}, fmt.Errorf("invalid tcp target %q: %w", s, err)
		}
		return Target{Kind: KindTCP, Address: addr}, nil
	}

	if strings.Contains(s, "://") {
		return Target{}, fmt.Errorf("unsupported target scheme in %q", s)
	}

	if strings.HasPrefix(s, "/") || isCOMPort(s) {
		return Target{Kind: KindSerial, Address: s}, nil
	}

	if host, port, err := net.SplitHostPort(s); err == nil && host != "" {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return Target{}, fmt.Errorf("invalid port in target %q", s)
		}
		return Target{Kind: KindTCP, Address: s}, nil
	}

	return Target{}, fmt.Errorf("cannot tell whether %q is a serial device or a remote host; use serial:// or tcp://", s)
}

// Open parses target and opens the matching channel. Serial lines are
// opened at the bootloader's baud rate.
func Open(ctx context.Context, target string) (Channel, error) {
	t, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case KindSerial:
		return OpenSerial(t.Address, BootloaderBaud)
	case KindTCP:
		return DialTCP(ctx, t.Address)
	case KindWebSocket:
		return DialWebSocket(ctx, t.Address)
	default:
		return nil, fmt.Errorf("unsupported target kind %s", t.Kind)
	}
}

func hostPort(s string) (string, error) {
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return "", fmt.Errorf("missing host")
	}

	host, port, err := net.SplitHostPort(s)
	if err != nil {
		// No port given
		if strings.Contains(err.Error(), "missing port") {
			return net.JoinHostPort(strings.Trim(s, "[]"), strconv.Itoa(DefaultPort)), nil
		}
		return "", err
	}
	if host == "" {
		return "", fmt.Errorf("missing host")
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return "", fmt.Errorf("invalid port %q", port)
	}
	return s, nil
}

func isCOMPort(s string) bool {
	if len(s) < 4 || !strings.EqualFold(s[:3], "COM") {
		return false
	}
	_, err := strconv.Atoi(s[3:])
	return err == nil
}
