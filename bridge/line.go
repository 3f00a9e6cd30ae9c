package bridge

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/moffa90/go-jnflash/transport"
)

// Port is the subset of serial.Port the bridge drives.
//
// Read must return (0, nil) when the read timeout expires, as
// go.bug.st/serial does.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetMode(mode *serial.Mode) error
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// LineMode is the current owner of the line.
type LineMode int

const (
	// ModeLogging: the Monitor reads application log output
	ModeLogging LineMode = iota

	// ModeProgramming: a tunnel session relays bootloader traffic
	ModeProgramming
)

func (m LineMode) String() string {
	switch m {
	case ModeLogging:
		return "logging"
	case ModeProgramming:
		return "programming"
	default:
		return fmt.Sprintf("LineMode(%d)", int(m))
	}
}

// ErrLineBusy is returned by Acquire while another session holds the line.
var ErrLineBusy = errors.New("line busy: a programming session is active")

// Line arbitrates a serial port between the Monitor and tunnel sessions.
//
// stateMu guards mode. ioMu is held by whoever is reading or writing the
// port: briefly by the Monitor for each bounded read, and by a Lease for
// the whole session.
type Line struct {
	logger

	port Port
	cfg  Config

	stateMu sync.Mutex
	mode    LineMode

	ioMu sync.Mutex
}

// NewLine takes ownership of port and puts it in Logging mode.
func NewLine(port Port, opts ...Option) (*Line, error) {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := newConfig(opts)
	l := &Line{
		logger: logger{cfg.Logger},
		port:   port,
		cfg:    cfg,
		mode:   ModeLogging,
	}

	if err := port.SetMode(transport.LineMode(transport.LoggingBaud)); err != nil {
		return nil, fmt.Errorf("set logging baud: %w", err)
	}
	if err := port.SetReadTimeout(cfg.PollInterval); err != nil {
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	return l, nil
}

// Mode returns the current line mode.
func (l *Line) Mode() LineMode {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	return l.mode
}

// Transition moves the line from one mode to another. It fails if the line
// is not in from, or if from == to.
func (l *Line) Transition(from, to LineMode) error {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()

	if from == to {
		return fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	if l.mode != from {
		if to == ModeProgramming && l.mode == ModeProgramming {
			return ErrLineBusy
		}
		return fmt.Errorf("invalid transition %s -> %s: line is %s", from, to, l.mode)
	}

	l.mode = to
	l.logDebug("line mode changed", "from", from.String(), "to", to.String())
	return nil
}

// Acquire claims the line for a programming session. It returns
// ErrLineBusy if a session already holds it. The port is switched to the
// bootloader baud rate and pending input is discarded.
//
// The caller must Release the lease on every exit path.
func (l *Line) Acquire() (*Lease, error) {
	if err := l.Transition(ModeLogging, ModeProgramming); err != nil {
		return nil, err
	}

	// Waits at most one PollInterval for the Monitor's current read.
	l.ioMu.Lock()

	if err := l.configure(transport.BootloaderBaud); err != nil {
		l.ioMu.Unlock()
		if terr := l.Transition(ModeProgramming, ModeLogging); terr != nil {
			l.logError("failed to revert line mode", "error", terr)
		}
		return nil, err
	}

	return &Lease{line: l}, nil
}

// Close closes the underlying port.
func (l *Line) Close() error {
	return l.port.Close()
}

func (l *Line) configure(baud int) error {
	if err := l.port.SetMode(transport.LineMode(baud)); err != nil {
		return fmt.Errorf("set baud rate %d: %w", baud, err)
	}
	if err := l.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset input buffer: %w", err)
	}
	return nil
}

// Lease is exclusive access to the line for one session.
type Lease struct {
	line *Line
	once sync.Once
}

// Read reads from the line. It returns (0, nil) when PollInterval passes
// without data.
func (s *Lease) Read(p []byte) (int, error) {
	return s.line.port.Read(p)
}

func (s *Lease) Write(p []byte) (int, error) {
	return s.line.port.Write(p)
}

// Release returns the line to Logging mode at the logging baud rate.
// It is safe to call more than once.
func (s *Lease) Release() {
	s.once.Do(func() {
		l := s.line
		if err := l.configure(transport.LoggingBaud); err != nil {
			l.logError("failed to restore logging mode", "error", err)
		}
		l.ioMu.Unlock()

		if err := l.Transition(ModeProgramming, ModeLogging); err != nil {
			l.logError("failed to release line", "error", err)
		}
	})
}
