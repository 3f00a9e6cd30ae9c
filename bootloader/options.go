package bootloader

import (
	"time"

	"github.com/moffa90/go-jnflash/protocol"
)

// Config holds the programmer configuration.
type Config struct {
	// ProgressCallback is called during programming to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// ReadTimeout bounds every response read. It is applied to channels
	// that implement ReadTimeoutSetter; zero leaves the channel unchanged.
	ReadTimeout time.Duration

	// ChunkSize is the number of image bytes sent per Flash Write command.
	// Default is 128 bytes.
	ChunkSize int

	// ReadMAC makes Program read and log the device MAC address after
	// identification
	ReadMAC bool

	// CommandDelay is an optional pause between writing a request and
	// reading its response
	CommandDelay time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ReadTimeout: 5 * time.Second,
		ChunkSize:   protocol.DefaultChunkSize,
	}
}

// Option is a functional option for configuring the Programmer.
type Option func(*Config)

// WithProgressCallback sets a callback function to track programming progress.
//
// Example:
//
//	prog := bootloader.New(device,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the programmer operations.
//
// Example:
//
//	prog := bootloader.New(device, bootloader.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTimeout sets the bound on every response read.
// It is an alias of WithReadTimeout kept for symmetry with other options.
//
// Example:
//
//	prog := bootloader.New(device, bootloader.WithTimeout(10*time.Second))
func WithTimeout(timeout time.Duration) Option {
	return WithReadTimeout(timeout)
}

// WithReadTimeout sets the read timeout.
//
// Example:
//
//	prog := bootloader.New(device, bootloader.WithReadTimeout(2*time.Second))
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout >= 0 {
			c.ReadTimeout = timeout
		}
	}
}

// WithChunkSize sets the number of image bytes per Flash Write command.
// Values outside 1..protocol.MaxWriteDataSize are ignored.
//
// Example:
//
//	prog := bootloader.New(device, bootloader.WithChunkSize(64))
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= protocol.MaxWriteDataSize {
			c.ChunkSize = size
		}
	}
}

// WithReadMAC enables reading the device MAC address during Program.
//
// Example:
//
//	prog := bootloader.New(device, bootloader.WithReadMAC(true))
func WithReadMAC(enabled bool) Option {
	return func(c *Config) {
		c.ReadMAC = enabled
	}
}

// WithCommandDelay sets a pause between each request and its response read.
// Slow USB-serial adapters occasionally need a few milliseconds.
func WithCommandDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.CommandDelay = delay
		}
	}
}
