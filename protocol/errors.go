package protocol

import (
	"errors"
	"fmt"
)

// ProtocolError represents a response that does not satisfy the protocol:
// either the response type is not the request type + 1, or the status byte
// reports a failure.
type ProtocolError struct {
	// Operation is the command that failed
	Operation string

	// StatusCode is the status byte returned by the bootloader
	StatusCode byte

	// ExpectedType and ActualType are set when the response type was wrong
	ExpectedType byte
	ActualType   byte
}

func (e *ProtocolError) Error() string {
	if e.ExpectedType != e.ActualType {
		return fmt.Sprintf("%s failed: unexpected response type 0x%02X (expected 0x%02X)",
			e.Operation, e.ActualType, e.ExpectedType)
	}
	return fmt.Sprintf("%s failed: %s (0x%02X)", e.Operation, getStatusName(e.StatusCode), e.StatusCode)
}

// FramingError indicates a truncated or malformed frame.
type FramingError struct {
	Reason string

	// Want and Got are byte counts for truncated reads
	Want int
	Got  int

	Err error
}

func (e *FramingError) Error() string {
	if e.Want > 0 {
		return fmt.Sprintf("framing error: %s: got %d of %d bytes", e.Reason, e.Got, e.Want)
	}
	return fmt.Sprintf("framing error: %s", e.Reason)
}

func (e *FramingError) Unwrap() error { return e.Err }

// ChecksumError indicates that a received frame failed integrity verification.
type ChecksumError struct {
	Type     byte
	Expected byte
	Actual   byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch on frame type 0x%02X: computed 0x%02X, received 0x%02X",
		e.Type, e.Expected, e.Actual)
}

// TransportError wraps an I/O failure or timeout on the underlying channel.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ErrTimeout is reported by channels whose read bound expired.
var ErrTimeout = errors.New("i/o timeout")

// IsProtocolError returns true if err is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var target *ProtocolError
	return errors.As(err, &target)
}

// IsFramingError returns true if err is or wraps a FramingError.
func IsFramingError(err error) bool {
	var target *FramingError
	return errors.As(err, &target)
}

// IsChecksumError returns true if err is or wraps a ChecksumError.
func IsChecksumError(err error) bool {
	var target *ChecksumError
	return errors.As(err, &target)
}

// IsTransportError returns true if err is or wraps a TransportError.
func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// getStatusName returns a human-readable name for a status code.
func getStatusName(code byte) string {
	switch code {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return fmt.Sprintf("unknown status code 0x%02X", code)
	}
}
