package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/moffa90/go-jnflash/protocol"
)

// Line speeds used on the JN5169 UART.
const (
	// BootloaderBaud is the rate the serial bootloader listens at after reset
	BootloaderBaud = 38400

	// LoggingBaud is the rate application firmware logs at
	LoggingBaud = 115200
)

// DefaultReadTimeout bounds serial reads until SetReadTimeout is called.
const DefaultReadTimeout = time.Second

// SerialLine is the subset of serial.Port used here.
type SerialLine interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetMode(mode *serial.Mode) error
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// SerialPort is a Channel over a local serial line.
//
// go.bug.st/serial reports an expired read timeout as (0, nil); SerialPort
// turns that into protocol.ErrTimeout.
type SerialPort struct {
	line SerialLine
}

// LineMode returns the 8N1 mode at the given baud rate.
func LineMode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens a serial device at baud, 8N1, with DefaultReadTimeout.
func OpenSerial(path string, baud int) (*SerialPort, error) {
	port, err := serial.Open(path, LineMode(baud))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	sp, err := NewSerialPort(port)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to configure %s: %w", path, err)
	}
	return sp, nil
}

// NewSerialPort wraps an already open line and applies DefaultReadTimeout.
// Pending input is discarded.
func NewSerialPort(line SerialLine) (*SerialPort, error) {
	sp := &SerialPort{line: line}
	if err := sp.SetReadTimeout(DefaultReadTimeout); err != nil {
		return nil, err
	}
	if err := line.ResetInputBuffer(); err != nil {
		return nil, fmt.Errorf("reset input buffer: %w", err)
	}
	return sp, nil
}

func (s *SerialPort) Read(p []byte) (int, error) {
	n, err := s.line.Read(p)
	if n == 0 && err == nil && len(p) > 0 {
		return 0, protocol.ErrTimeout
	}
	return n, err
}

func (s *SerialPort) Write(p []byte) (int, error) {
	return s.line.Write(p)
}

func (s *SerialPort) Close() error {
	return s.line.Close()
}

// SetReadTimeout bounds each Read. Zero or negative values select
// DefaultReadTimeout; reads are never left unbounded.
func (s *SerialPort) SetReadTimeout(t time.Duration) error {
	if t <= 0 {
		t = DefaultReadTimeout
	}
	if err := s.line.SetReadTimeout(t); err != nil {
		return fmt.Errorf("set read timeout: %w", err)
	}
	return nil
}
