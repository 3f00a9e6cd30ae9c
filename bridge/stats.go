package bridge

import (
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// sessionStats counts relayed bytes for one session.
type sessionStats struct {
	start    time.Time
	toLine   atomic.Int64 // bytes written from the tunnel to the line
	toTunnel atomic.Int64 // bytes written from the line to the tunnel
}

func newSessionStats() *sessionStats {
	return &sessionStats{start: time.Now()}
}

func (s *sessionStats) addToLine(n int)   { s.toLine.Add(int64(n)) }
func (s *sessionStats) addToTunnel(n int) { s.toTunnel.Add(int64(n)) }

// keyValues renders the counters for a structured log call.
func (s *sessionStats) keyValues() []interface{} {
	return []interface{}{
		"to_line", humanize.Bytes(uint64(s.toLine.Load())),
		"to_tunnel", humanize.Bytes(uint64(s.toTunnel.Load())),
		"duration", time.Since(s.start).Round(time.Millisecond).String(),
	}
}
