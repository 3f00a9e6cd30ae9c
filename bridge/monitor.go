package bridge

import (
	"context"
	"fmt"
	"time"
)

// maxLogLine is the longest UART line kept before it is logged unterminated.
const maxLogLine = 1024

// Monitor forwards the application's UART output to the logger while the
// line is in Logging mode.
type Monitor struct {
	logger

	line    *Line
	cfg     Config
	partial []byte
}

// NewMonitor creates a Monitor for line. Options not given fall back to
// the line's configuration.
func NewMonitor(line *Line, opts ...Option) *Monitor {
	cfg := line.cfg
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Monitor{
		logger:  logger{cfg.Logger},
		line:    line,
		cfg:     cfg,
		partial: make([]byte, 0, maxLogLine),
	}
}

// Run reads the line until ctx is cancelled or the port fails.
// It never touches the port while a session holds it.
func (m *Monitor) Run(ctx context.Context) error {
	buf := make([]byte, 256)

	for {
		if err := ctx.Err(); err != nil {
			m.flush()
			return nil
		}

		n, err := m.read(ctx, buf)
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}
		m.consume(buf[:n])
	}
}

// read performs one bounded read if the line is in Logging mode.
func (m *Monitor) read(ctx context.Context, buf []byte) (int, error) {
	if m.line.Mode() != ModeLogging || !m.line.ioMu.TryLock() {
		// Output from a previous owner is not a log line.
		m.partial = m.partial[:0]
		m.wait(ctx)
		return 0, nil
	}
	defer m.line.ioMu.Unlock()

	// A session may have claimed the line before we took ioMu; it is now
	// waiting for us.
	if m.line.Mode() != ModeLogging {
		return 0, nil
	}

	return m.line.port.Read(buf)
}

func (m *Monitor) wait(ctx context.Context) {
	t := time.NewTimer(m.cfg.PollInterval)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (m *Monitor) consume(data []byte) {
	for _, b := range data {
		switch b {
		case '\n', '\r':
			m.flush()
		default:
			m.partial = append(m.partial, b)
			if len(m.partial) >= maxLogLine {
				m.flush()
			}
		}
	}
}

func (m *Monitor) flush() {
	if len(m.partial) == 0 {
		return
	}
	m.logInfo("uart", "line", string(m.partial))
	m.partial = m.partial[:0]
}
