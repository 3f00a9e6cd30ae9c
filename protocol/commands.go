package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildGetChipIDCmd constructs a Get Chip ID request frame.
//
// Frame structure:
//
//	[LEN][CMD][CHECKSUM]
func BuildGetChipIDCmd() ([]byte, error) {
	return Encode(CmdGetChipID, nil)
}

// BuildReadRAMCmd constructs a Read RAM request frame for length bytes at addr.
//
// Frame structure:
//
//	[LEN][CMD][ADDR(4, LE)][LENGTH(2, LE)][CHECKSUM]
//
// The response carries a status byte before the data, so length is limited to
// what fits a response frame.
func BuildReadRAMCmd(addr uint32, length uint16) ([]byte, error) {
	if int(length) > MaxPayloadSize-StatusSize {
		return nil, fmt.Errorf("read length %d exceeds maximum %d bytes", length, MaxPayloadSize-StatusSize)
	}

	payload := make([]byte, ReadRAMRequestSize)
	binary.LittleEndian.PutUint32(payload[0:4], addr)
	binary.LittleEndian.PutUint16(payload[4:6], length)

	return Encode(CmdReadRAM, payload)
}

// BuildSelectFlashTypeCmd constructs a Select Flash Type request frame.
//
// Frame structure:
//
//	[LEN][CMD][FLASH_CODE][ADDR(4, LE)][CHECKSUM]
func BuildSelectFlashTypeCmd(flashCode byte, addr uint32) ([]byte, error) {
	payload := make([]byte, SelectFlashRequestSize)
	payload[0] = flashCode
	binary.LittleEndian.PutUint32(payload[1:5], addr)

	return Encode(CmdSelectFlashType, payload)
}

// BuildEraseFlashCmd constructs an Erase Flash request frame.
// Erases the flash bank chosen by the last Select Flash Type.
func BuildEraseFlashCmd() ([]byte, error) {
	return Encode(CmdEraseFlash, nil)
}

// BuildResetCmd constructs a Reset request frame.
func BuildResetCmd() ([]byte, error) {
	return Encode(CmdReset, nil)
}

// BuildChangeBaudCmd constructs a Change Baud request frame.
//
// Frame structure:
//
//	[LEN][CMD][DIVISOR][CHECKSUM]
func BuildChangeBaudCmd(divisor byte) ([]byte, error) {
	return Encode(CmdChangeBaud, []byte{divisor})
}

// BuildFlashWriteCmd constructs a Flash Write request frame.
//
// Frame structure:
//
//	[LEN][CMD][ADDR(4, LE)][DATA...][CHECKSUM]
func BuildFlashWriteCmd(addr uint32, data []byte) ([]byte, error) {
	return buildWriteCmd(CmdFlashWrite, addr, data)
}

// BuildRAMWriteCmd constructs a RAM Write request frame.
// Same layout as Flash Write.
func BuildRAMWriteCmd(addr uint32, data []byte) ([]byte, error) {
	return buildWriteCmd(CmdRAMWrite, addr, data)
}

func buildWriteCmd(cmd byte, addr uint32, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data cannot be empty")
	}
	if len(data) > MaxWriteDataSize {
		return nil, fmt.Errorf("data length %d exceeds maximum %d bytes", len(data), MaxWriteDataSize)
	}

	payload := make([]byte, AddressSize+len(data))
	binary.LittleEndian.PutUint32(payload[0:4], addr)
	copy(payload[AddressSize:], data)

	return Encode(cmd, payload)
}

// ParseAddressedWrite splits a RAM/Flash Write request payload into address and data.
func ParseAddressedWrite(payload []byte) (uint32, []byte, error) {
	if len(payload) < AddressSize {
		return 0, nil, fmt.Errorf("write request too short: got %d bytes, need at least %d", len(payload), AddressSize)
	}
	return binary.LittleEndian.Uint32(payload[0:4]), payload[AddressSize:], nil
}

// ParseReadRAMRequest decodes a Read RAM request payload.
func ParseReadRAMRequest(payload []byte) (addr uint32, length uint16, err error) {
	if len(payload) != ReadRAMRequestSize {
		return 0, 0, fmt.Errorf("invalid data length for Read RAM request: got %d bytes, expected %d", len(payload), ReadRAMRequestSize)
	}
	return binary.LittleEndian.Uint32(payload[0:4]), binary.LittleEndian.Uint16(payload[4:6]), nil
}

// ParseSelectFlashTypeRequest decodes a Select Flash Type request payload.
func ParseSelectFlashTypeRequest(payload []byte) (flashCode byte, addr uint32, err error) {
	if len(payload) != SelectFlashRequestSize {
		return 0, 0, fmt.Errorf("invalid data length for Select Flash Type request: got %d bytes, expected %d", len(payload), SelectFlashRequestSize)
	}
	return payload[0], binary.LittleEndian.Uint32(payload[1:5]), nil
}
