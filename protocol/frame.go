package protocol

import (
	"errors"
	"fmt"
	"io"
)

// Frame is a single decoded message.
//
// Wire layout:
//
//	[LEN][TYPE][PAYLOAD...][CHECKSUM]
//
// LEN is len(PAYLOAD)+2 and CHECKSUM is the XOR of every preceding byte.
type Frame struct {
	Length   byte
	Type     byte
	Payload  []byte
	Checksum byte
}

// Checksum returns the XOR fold of data.
//
// XOR-folding a complete frame, checksum byte included, yields zero.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// Encode builds a frame of the given type around payload.
// The payload may be empty and must not exceed MaxPayloadSize bytes.
func Encode(msgType byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload length %d exceeds maximum %d bytes", len(payload), MaxPayloadSize)
	}

	frame := make([]byte, 0, MinFrameSize+len(payload))
	frame = append(frame, byte(len(payload)+MinLength))
	frame = append(frame, msgType)
	frame = append(frame, payload...)
	frame = append(frame, Checksum(frame))

	return frame, nil
}

// Decode reads exactly one frame from r.
//
// It reads the two header bytes, then length-1 further bytes. A source that
// ends early yields a *FramingError, any other read failure a *TransportError.
// The checksum is always verified; a mismatch yields a *ChecksumError.
func Decode(r io.Reader) (*Frame, error) {
	header := make([]byte, HeaderSize)
	if err := readFull(r, header, "header"); err != nil {
		return nil, err
	}

	length := header[0]
	if length < MinLength {
		return nil, &FramingError{
			Reason: fmt.Sprintf("length byte 0x%02X below minimum 0x%02X", length, MinLength),
		}
	}

	// payload + checksum
	rest := make([]byte, int(length)-1)
	if err := readFull(r, rest, "body"); err != nil {
		return nil, err
	}

	frame := &Frame{
		Length:   length,
		Type:     header[1],
		Payload:  rest[:len(rest)-1],
		Checksum: rest[len(rest)-1],
	}

	computed := Checksum(header) ^ Checksum(frame.Payload)
	if computed != frame.Checksum {
		return nil, &ChecksumError{
			Type:     frame.Type,
			Expected: computed,
			Actual:   frame.Checksum,
		}
	}

	return frame, nil
}

// readFull fills buf from r, classifying short reads.
func readFull(r io.Reader, buf []byte, part string) error {
	n, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		// A clean EOF is only possible between frames.
		if part != "header" && errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return &FramingError{
			Reason: fmt.Sprintf("truncated %s", part),
			Want:   len(buf),
			Got:    n,
			Err:    err,
		}
	}

	return &TransportError{Op: "read " + part, Err: err}
}
