// Package protocol implements the JN516x serial bootloader protocol.
//
// This package provides the frame codec, the request/response catalog,
// request builders and response parsers used by both the host-side
// programmer and the device-side emulator.
//
// # Protocol Overview
//
// Every message, in both directions, is a single frame:
//
//	[LEN][TYPE][PAYLOAD...][CHECKSUM]
//
// Where:
//   - LEN = len(PAYLOAD) + 2 (one byte, so at most 253 payload bytes)
//   - TYPE = message type; a response type is always its request type + 1
//   - CHECKSUM = XOR of every preceding byte, so the whole frame XORs to zero
//
// Response payloads always start with a status byte (0x00 = success).
//
// # Encoding and Decoding
//
//	frame, err := protocol.BuildGetChipIDCmd()
//	_, err = port.Write(frame)
//
//	resp, err := protocol.Decode(port)
//	status, data, err := protocol.ParseResponse(protocol.CmdGetChipID, resp)
//	chipID, err := protocol.ParseGetChipIDResponse(data)
//
// Decode always verifies the checksum.
//
// # Error Handling
//
// Decode and ParseResponse report failures with typed errors:
//   - FramingError: truncated or malformed frame
//   - ChecksumError: integrity check failed
//   - ProtocolError: wrong response type or failure status
//   - TransportError: the channel failed or timed out
package protocol
