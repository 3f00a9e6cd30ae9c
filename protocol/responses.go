package protocol

import (
	"encoding/binary"
	"fmt"
)

// ParseResponse validates that frame answers requestType and splits its
// payload into status code and data.
//
// Response payload structure:
//
//	[STATUS][DATA...]
//
// A response type other than requestType + 1 is a *ProtocolError.
func ParseResponse(requestType byte, frame *Frame) (statusCode byte, data []byte, err error) {
	if frame == nil {
		return 0, nil, fmt.Errorf("nil frame")
	}

	expected := ResponseTypeFor(requestType)
	if frame.Type != expected {
		return 0, nil, &ProtocolError{
			Operation:    CommandName(requestType),
			ExpectedType: expected,
			ActualType:   frame.Type,
		}
	}

	if len(frame.Payload) < StatusSize {
		return 0, nil, &FramingError{Reason: fmt.Sprintf("%s response has no status byte", CommandName(requestType))}
	}

	return frame.Payload[0], frame.Payload[StatusSize:], nil
}

// ParseGetChipIDResponse parses the Get Chip ID response data.
//
// Data format (4 bytes):
//
//	[CHIP_ID(4, big-endian)]
func ParseGetChipIDResponse(data []byte) (uint32, error) {
	if len(data) != ChipIDResponseSize-StatusSize {
		return 0, fmt.Errorf("invalid data length for Get Chip ID response: got %d bytes, expected %d", len(data), ChipIDResponseSize-StatusSize)
	}
	return binary.BigEndian.Uint32(data), nil
}

// ParseReadRAMResponse checks that a Read RAM response carries exactly length bytes.
func ParseReadRAMResponse(data []byte, length uint16) ([]byte, error) {
	if len(data) != int(length) {
		return nil, fmt.Errorf("invalid data length for Read RAM response: got %d bytes, expected %d", len(data), length)
	}
	return data, nil
}

// ParseMACResponse extracts the MAC address from a Read RAM response of
// MACReadLength bytes.
//
// Data format (8 bytes):
//
//	[RESERVED][MAC(7)]
func ParseMACResponse(data []byte) (MACAddress, error) {
	var mac MACAddress
	if len(data) != MACReadLength {
		return mac, fmt.Errorf("invalid data length for MAC response: got %d bytes, expected %d", len(data), MACReadLength)
	}
	copy(mac[:], data[1:])
	return mac, nil
}

// ParseBootloaderVersionResponse decodes the little-endian bootloader version word.
func ParseBootloaderVersionResponse(data []byte) (uint32, error) {
	if len(data) != BootloaderVersionSize {
		return 0, fmt.Errorf("invalid data length for bootloader version: got %d bytes, expected %d", len(data), BootloaderVersionSize)
	}
	return binary.LittleEndian.Uint32(data), nil
}

// ParseMemoryConfigResponse decodes the big-endian memory configuration words.
func ParseMemoryConfigResponse(data []byte) (MemoryConfig, error) {
	var cfg MemoryConfig
	if len(data) != MemoryConfigSize {
		return cfg, fmt.Errorf("invalid data length for memory configuration: got %d bytes, expected %d", len(data), MemoryConfigSize)
	}
	for i := range cfg {
		cfg[i] = binary.BigEndian.Uint32(data[i*4 : i*4+4])
	}
	return cfg, nil
}

// BuildStatusResponse constructs a response frame carrying status and data.
// Used by device-side responders.
func BuildStatusResponse(responseType, status byte, data []byte) ([]byte, error) {
	payload := make([]byte, 0, StatusSize+len(data))
	payload = append(payload, status)
	payload = append(payload, data...)
	return Encode(responseType, payload)
}
