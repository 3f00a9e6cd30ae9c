package protocol

import (
	"fmt"
	"strings"
)

// MACAddress is the factory address reported by the MAC read.
// The bootloader returns a reserved byte first; it is not part of the address.
type MACAddress [MACSize]byte

// String formats the address as colon-separated hex.
func (m MACAddress) String() string {
	parts := make([]string, len(m))
	for i, b := range m {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

// MemoryConfig holds the four configuration words at AddrMemoryConfig.
type MemoryConfig [4]uint32
