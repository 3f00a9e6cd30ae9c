package bootloader

import (
	"errors"
	"fmt"
)

// UnsupportedDeviceError indicates that the chip reported an identity other
// than the one this library programs.
type UnsupportedDeviceError struct {
	Expected uint32
	Actual   uint32
}

func (e *UnsupportedDeviceError) Error() string {
	return fmt.Sprintf("unsupported device: expected chip ID 0x%08X, device has 0x%08X",
		e.Expected, e.Actual)
}

// IsUnsupportedDeviceError returns true if err is or wraps an UnsupportedDeviceError.
func IsUnsupportedDeviceError(err error) bool {
	var target *UnsupportedDeviceError
	return errors.As(err, &target)
}
