package emulator

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/moffa90/go-jnflash/protocol"
)

type recordingLogger struct {
	msgs []string
}

func (l *recordingLogger) Debug(msg string, kv ...interface{}) { l.msgs = append(l.msgs, msg) }
func (l *recordingLogger) Info(msg string, kv ...interface{})  { l.msgs = append(l.msgs, msg) }
func (l *recordingLogger) Error(msg string, kv ...interface{}) { l.msgs = append(l.msgs, msg) }

func readRAMPayload(addr uint32, length uint16) []byte {
	p := make([]byte, protocol.ReadRAMRequestSize)
	binary.LittleEndian.PutUint32(p[0:4], addr)
	binary.LittleEndian.PutUint16(p[4:6], length)
	return p
}

func TestRespondGetChipID(t *testing.T) {
	respType, resp, ok := New().Respond(protocol.CmdGetChipID, nil)
	if !ok {
		t.Fatal("Respond() ok = false")
	}

	if respType != protocol.RespGetChipID {
		t.Errorf("respType = 0x%02X, want 0x%02X", respType, protocol.RespGetChipID)
	}

	want := []byte{0x00, 0x00, 0x00, 0xB6, 0x86}
	if !bytes.Equal(resp, want) {
		t.Errorf("resp = % X, want % X", resp, want)
	}
}

func TestRespondReadRAM(t *testing.T) {
	tests := []struct {
		name   string
		addr   uint32
		length uint16
		want   []byte
	}{
		{
			name:   "bootloader version",
			addr:   protocol.AddrBootloaderVersion,
			length: 4,
			want:   []byte{0x00, 0x2A, 0x00, 0x00, 0x00},
		},
		{
			name:   "mac address",
			addr:   protocol.AddrMACAddress,
			length: protocol.MACReadLength,
			want:   []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88},
		},
		{
			name:   "memory configuration",
			addr:   protocol.AddrMemoryConfig,
			length: protocol.MemoryConfigSize,
			want: []byte{
				0x00,
				0x00, 0x00, 0x00, 0x3F,
				0x00, 0x00, 0x00, 0x3F,
				0x00, 0x00, 0x00, 0x3F,
				0x00, 0x00, 0x00, 0x00,
			},
		},
		{
			name:   "unmapped address reads zeros",
			addr:   0x04000000,
			length: 6,
			want:   []byte{0x00, 0, 0, 0, 0, 0, 0},
		},
		{
			name:   "zero length",
			addr:   0x04000000,
			length: 0,
			want:   []byte{0x00},
		},
		{
			name:   "read straddling the version word",
			addr:   protocol.AddrBootloaderVersion - 2,
			length: 4,
			want:   []byte{0x00, 0x00, 0x00, 0x2A, 0x00},
		},
	}

	dev := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			respType, resp, ok := dev.Respond(protocol.CmdReadRAM, readRAMPayload(tt.addr, tt.length))
			if !ok {
				t.Fatal("Respond() ok = false")
			}
			if respType != protocol.RespReadRAM {
				t.Errorf("respType = 0x%02X", respType)
			}
			if !bytes.Equal(resp, tt.want) {
				t.Errorf("resp = % X, want % X", resp, tt.want)
			}
		})
	}
}

func TestRespondSelectFlashType(t *testing.T) {
	tests := []struct {
		name       string
		code       byte
		wantStatus byte
	}{
		{name: "internal flash", code: protocol.FlashInternal, wantStatus: protocol.StatusSuccess},
		{name: "external flash", code: 0x00, wantStatus: protocol.StatusFailure},
		{name: "unknown code", code: 0x04, wantStatus: protocol.StatusFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := []byte{tt.code, 0, 0, 0, 0}
			_, resp, ok := New().Respond(protocol.CmdSelectFlashType, payload)
			if !ok {
				t.Fatal("Respond() ok = false")
			}
			if len(resp) != 1 || resp[0] != tt.wantStatus {
				t.Errorf("resp = % X, want [%02X]", resp, tt.wantStatus)
			}
		})
	}
}

func TestRespondPairing(t *testing.T) {
	payloads := map[byte][]byte{
		protocol.CmdGetChipID:       nil,
		protocol.CmdReadRAM:         readRAMPayload(0, 4),
		protocol.CmdSelectFlashType: {protocol.FlashInternal, 0, 0, 0, 0},
		protocol.CmdEraseFlash:      nil,
		protocol.CmdReset:           nil,
		protocol.CmdChangeBaud:      {0x01},
		protocol.CmdRAMWrite:        {0, 0, 0, 0, 0xAA},
		protocol.CmdFlashWrite:      {0, 0, 0, 0, 0xAA},
	}

	dev := New()
	for _, c := range protocol.Commands() {
		respType, resp, ok := dev.Respond(c.Request, payloads[c.Request])
		if !ok {
			t.Errorf("%s: no reply", c.Name)
			continue
		}
		if respType != c.Request+1 {
			t.Errorf("%s: reply type 0x%02X, want 0x%02X", c.Name, respType, c.Request+1)
		}
		if len(resp) == 0 {
			t.Errorf("%s: reply has no status byte", c.Name)
		}
	}
}

func TestRespondFixedStatuses(t *testing.T) {
	tests := []struct {
		name       string
		reqType    byte
		payload    []byte
		wantStatus byte
	}{
		{name: "erase", reqType: protocol.CmdEraseFlash, wantStatus: protocol.StatusSuccess},
		{name: "reset", reqType: protocol.CmdReset, wantStatus: protocol.StatusSuccess},
		{name: "change baud is never applied", reqType: protocol.CmdChangeBaud, payload: []byte{0x01}, wantStatus: protocol.StatusFailure},
		{name: "flash write", reqType: protocol.CmdFlashWrite, payload: []byte{0, 1, 0, 0, 0xAA}, wantStatus: protocol.StatusSuccess},
		{name: "ram write", reqType: protocol.CmdRAMWrite, payload: []byte{0, 4, 0, 4, 0xAA}, wantStatus: protocol.StatusSuccess},
		{name: "short read request", reqType: protocol.CmdReadRAM, payload: []byte{0x62}, wantStatus: protocol.StatusFailure},
		{name: "short select request", reqType: protocol.CmdSelectFlashType, payload: []byte{0x08}, wantStatus: protocol.StatusFailure},
		{name: "short write request", reqType: protocol.CmdFlashWrite, payload: []byte{0x00}, wantStatus: protocol.StatusFailure},
		{name: "oversized read", reqType: protocol.CmdReadRAM, payload: readRAMPayload(0, 0x1000), wantStatus: protocol.StatusFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, ok := New().Respond(tt.reqType, tt.payload)
			if !ok {
				t.Fatal("Respond() ok = false")
			}
			if len(resp) != 1 || resp[0] != tt.wantStatus {
				t.Errorf("resp = % X, want [%02X]", resp, tt.wantStatus)
			}
		})
	}
}

func TestRespondUnknownType(t *testing.T) {
	logger := &recordingLogger{}
	dev := New(WithLogger(logger))

	for _, typ := range []byte{0x00, 0x0B, 0x33, 0x99, 0xFF} {
		if _, _, ok := dev.Respond(typ, []byte{1, 2, 3}); ok {
			t.Errorf("type 0x%02X: ok = true, want false", typ)
		}
	}

	if len(logger.msgs) == 0 {
		t.Error("unknown types were not logged")
	}
}

func TestWriteRecorder(t *testing.T) {
	var writes []Write
	dev := New(WithWriteRecorder(func(w Write) { writes = append(writes, w) }))

	payload := []byte{0x80, 0x00, 0x00, 0x00, 0xDE, 0xAD}
	dev.Respond(protocol.CmdFlashWrite, payload)
	payload[4] = 0x00

	if len(writes) != 1 {
		t.Fatalf("recorded %d writes, want 1", len(writes))
	}

	w := writes[0]
	if w.Type != protocol.CmdFlashWrite || w.Addr != 0x80 {
		t.Errorf("write = %+v", w)
	}
	if !bytes.Equal(w.Data, []byte{0xDE, 0xAD}) {
		t.Errorf("recorded data = % X, aliases the request", w.Data)
	}
}

func TestOptions(t *testing.T) {
	dev := New(
		WithChipID(0x12345678),
		WithBootloaderVersion(7),
		WithMAC([protocol.MACReadLength]byte{0, 1, 2, 3, 4, 5, 6, 7}),
	)

	_, resp, _ := dev.Respond(protocol.CmdGetChipID, nil)
	if got := binary.BigEndian.Uint32(resp[1:]); got != 0x12345678 {
		t.Errorf("chip ID = 0x%08X", got)
	}

	if got := dev.ReadMemory(protocol.AddrBootloaderVersion, 4); !bytes.Equal(got, []byte{7, 0, 0, 0}) {
		t.Errorf("version = % X", got)
	}

	if got := dev.ReadMemory(protocol.AddrMACAddress, 8); !bytes.Equal(got, []byte{0, 1, 2, 3, 4, 5, 6, 7}) {
		t.Errorf("mac = % X", got)
	}
}
