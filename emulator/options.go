package emulator

import "github.com/moffa90/go-jnflash/protocol"

// Logger is an optional logging interface, the same shape as bootloader.Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Write is one acknowledged RAM or flash write.
type Write struct {
	// Type is protocol.CmdFlashWrite or protocol.CmdRAMWrite
	Type byte
	Addr uint32
	Data []byte
}

// WriteRecorder receives every write the device acknowledges.
type WriteRecorder func(Write)

// Config holds the emulator configuration.
type Config struct {
	Logger        Logger
	WriteRecorder WriteRecorder

	// ChipID is reported by Get Chip ID
	ChipID uint32

	// BootloaderVersion is stored at protocol.AddrBootloaderVersion
	BootloaderVersion uint32

	// MAC is the 8-byte block stored at protocol.AddrMACAddress
	MAC [protocol.MACReadLength]byte
}

func defaultConfig() Config {
	return Config{
		ChipID:            protocol.ChipIDJN5169,
		BootloaderVersion: 42,
		MAC:               [protocol.MACReadLength]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88},
	}
}

// Option is a functional option for configuring the Device.
type Option func(*Config)

// WithLogger sets a logger for request tracing.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithWriteRecorder registers a callback invoked with a copy of every write.
func WithWriteRecorder(rec WriteRecorder) Option {
	return func(c *Config) {
		c.WriteRecorder = rec
	}
}

// WithChipID overrides the reported chip identity.
func WithChipID(id uint32) Option {
	return func(c *Config) {
		c.ChipID = id
	}
}

// WithBootloaderVersion overrides the emulated bootloader version word.
func WithBootloaderVersion(v uint32) Option {
	return func(c *Config) {
		c.BootloaderVersion = v
	}
}

// WithMAC overrides the 8-byte MAC block, reserved byte first.
func WithMAC(mac [protocol.MACReadLength]byte) Option {
	return func(c *Config) {
		c.MAC = mac
	}
}
