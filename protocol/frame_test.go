package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0x00,
		},
		{
			name:     "single byte",
			data:     []byte{0x32},
			expected: 0x32,
		},
		{
			name:     "get chip id header",
			data:     []byte{0x02, 0x32},
			expected: 0x30,
		},
		{
			name:     "bytes cancel",
			data:     []byte{0xAA, 0xAA},
			expected: 0x00,
		},
		{
			name:     "multiple bytes",
			data:     []byte{0x01, 0x02, 0x04, 0x08},
			expected: 0x0F,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Checksum(tt.data)
			if result != tt.expected {
				t.Errorf("Checksum() = 0x%02X, want 0x%02X", result, tt.expected)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	frame, err := Encode(CmdGetChipID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{0x02, 0x32, 0x30}
	if !bytes.Equal(frame, want) {
		t.Errorf("Encode() = % X, want % X", frame, want)
	}

	if _, err := Encode(CmdFlashWrite, make([]byte, MaxPayloadSize+1)); err == nil {
		t.Error("expected error for oversized payload, got nil")
	}
}

func TestEncodeChecksumInvariant(t *testing.T) {
	for n := 0; n <= MaxPayloadSize; n++ {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i*7 + n)
		}

		frame, err := Encode(CmdFlashWrite, payload)
		if err != nil {
			t.Fatalf("len %d: unexpected error: %v", n, err)
		}

		if int(frame[0]) != n+2 {
			t.Errorf("len %d: length byte = %d, want %d", n, frame[0], n+2)
		}

		if got := Checksum(frame); got != 0 {
			t.Errorf("len %d: XOR over frame = 0x%02X, want 0", n, got)
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	for n := 0; n <= MaxPayloadSize; n++ {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(255 - i)
		}

		encoded, err := Encode(RespReadRAM, payload)
		if err != nil {
			t.Fatalf("len %d: unexpected error: %v", n, err)
		}

		frame, err := Decode(bytes.NewReader(encoded))
		if err != nil {
			t.Fatalf("len %d: unexpected error: %v", n, err)
		}

		if frame.Type != RespReadRAM {
			t.Errorf("len %d: Type = 0x%02X, want 0x%02X", n, frame.Type, RespReadRAM)
		}

		if !bytes.Equal(frame.Payload, payload) {
			t.Errorf("len %d: payload mismatch", n)
		}
	}
}

func TestDecodeConsumesExactlyOneFrame(t *testing.T) {
	first, _ := Encode(RespGetChipID, []byte{0x00, 0x00, 0x00, 0xB6, 0x86})
	second, _ := Encode(RespEraseFlash, []byte{0x00})

	r := bytes.NewReader(append(first, second...))

	f1, err := Decode(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f2, err := Decode(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f1.Type != RespGetChipID || f2.Type != RespEraseFlash {
		t.Errorf("types = 0x%02X, 0x%02X; want 0x%02X, 0x%02X", f1.Type, f2.Type, RespGetChipID, RespEraseFlash)
	}
}

func TestDecodeDetectsSingleBitFlips(t *testing.T) {
	payload := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	valid, err := Encode(RespReadRAM, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Flips in the length byte are covered by TestDecodeLengthByteFlips.
	for i := 1; i < len(valid); i++ {
		for bit := 0; bit < 8; bit++ {
			corrupted := append([]byte(nil), valid...)
			corrupted[i] ^= 1 << bit

			_, err := Decode(bytes.NewReader(corrupted))
			if !IsChecksumError(err) {
				t.Errorf("byte %d bit %d: error = %v, want ChecksumError", i, bit, err)
			}
		}
	}
}

func TestDecodeLengthByteFlips(t *testing.T) {
	payload := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	valid, err := Encode(RespReadRAM, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name         string
		bit          int
		wantChecksum bool
		wantFraming  bool
	}{
		{
			// 0x0B -> 0x0A: the last payload byte is read as the checksum
			name:         "shortened frame",
			bit:          0,
			wantChecksum: true,
		},
		{
			// 0x0B -> 0x1B: the body runs past the end of the source
			name:        "lengthened frame",
			bit:         4,
			wantFraming: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corrupted := append([]byte(nil), valid...)
			corrupted[0] ^= 1 << tt.bit

			_, err := Decode(bytes.NewReader(corrupted))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if IsChecksumError(err) != tt.wantChecksum {
				t.Errorf("error = %v, want ChecksumError = %v", err, tt.wantChecksum)
			}
			if IsFramingError(err) != tt.wantFraming {
				t.Errorf("error = %v, want FramingError = %v", err, tt.wantFraming)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	valid, _ := Encode(RespGetChipID, []byte{0x00, 0x00, 0x00, 0xB6, 0x86})

	tests := []struct {
		name      string
		input     []byte
		wantFrame bool
		wantEOF   bool
	}{
		{
			name:      "empty source",
			input:     nil,
			wantFrame: true,
			wantEOF:   true,
		},
		{
			name:      "half header",
			input:     valid[:1],
			wantFrame: true,
		},
		{
			name:      "missing checksum",
			input:     valid[:len(valid)-1],
			wantFrame: true,
		},
		{
			name:      "header only",
			input:     valid[:2],
			wantFrame: true,
		},
		{
			name:      "length below minimum",
			input:     []byte{0x01, 0x33, 0x32},
			wantFrame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if tt.wantFrame && !IsFramingError(err) {
				t.Errorf("error = %v, want FramingError", err)
			}

			if errors.Is(err, io.EOF) != tt.wantEOF {
				t.Errorf("errors.Is(err, io.EOF) = %v, want %v", !tt.wantEOF, tt.wantEOF)
			}
		})
	}
}

type failingReader struct {
	err error
}

func (r *failingReader) Read(p []byte) (int, error) {
	return 0, r.err
}

func TestDecodeTransportError(t *testing.T) {
	_, err := Decode(&failingReader{err: ErrTimeout})

	if !IsTransportError(err) {
		t.Fatalf("error = %v, want TransportError", err)
	}

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("error = %v, want wrapped ErrTimeout", err)
	}
}
