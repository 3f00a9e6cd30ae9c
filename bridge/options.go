package bridge

import (
	"fmt"
	"time"

	"github.com/moffa90/go-jnflash/transport"
)

// DefaultAddr is the listen address of the raw TCP tunnel.
var DefaultAddr = fmt.Sprintf(":%d", transport.DefaultPort)

// Logger is an optional logging interface, the same shape as bootloader.Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Config holds the line and agent configuration.
type Config struct {
	Logger Logger

	// IdleTimeout ends a session whose tunnel has been silent this long
	IdleTimeout time.Duration

	// PollInterval bounds each serial read, which is how often the line
	// readers notice cancellation and mode changes
	PollInterval time.Duration
}

func defaultConfig() Config {
	return Config{
		IdleTimeout:  30 * time.Second,
		PollInterval: 50 * time.Millisecond,
	}
}

// Option is a functional option for configuring a Line, Monitor or Agent.
type Option func(*Config)

// WithLogger sets a logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithIdleTimeout sets how long a silent tunnel keeps the line.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.IdleTimeout = d
		}
	}
}

// WithPollInterval sets the serial read bound.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.PollInterval = d
		}
	}
}

func newConfig(opts []Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

type logger struct {
	l Logger
}

func (lg logger) logDebug(msg string, keysAndValues ...interface{}) {
	if lg.l != nil {
		lg.l.Debug(msg, keysAndValues...)
	}
}

func (lg logger) logInfo(msg string, keysAndValues ...interface{}) {
	if lg.l != nil {
		lg.l.Info(msg, keysAndValues...)
	}
}

func (lg logger) logError(msg string, keysAndValues ...interface{}) {
	if lg.l != nil {
		lg.l.Error(msg, keysAndValues...)
	}
}
