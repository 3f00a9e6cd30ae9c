package emulator

import (
	"encoding/binary"
	"fmt"

	"github.com/moffa90/go-jnflash/protocol"
)

// region is a fixed block of emulated memory.
type region struct {
	name string
	addr uint32
	data []byte
}

// Device answers bootloader requests from a fixed memory view.
// It keeps no state between requests and is safe for concurrent use.
type Device struct {
	config Config
	memory []region
}

// New creates a Device with the given options.
func New(opts ...Option) *Device {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	version := make([]byte, protocol.BootloaderVersionSize)
	binary.LittleEndian.PutUint32(version, cfg.BootloaderVersion)

	memConfig := make([]byte, protocol.MemoryConfigSize)
	for i, w := range []uint32{0x3F, 0x3F, 0x3F, 0x00} {
		binary.BigEndian.PutUint32(memConfig[i*4:], w)
	}

	mac := make([]byte, len(cfg.MAC))
	copy(mac, cfg.MAC[:])

	return &Device{
		config: cfg,
		memory: []region{
			{name: "bootloader version", addr: protocol.AddrBootloaderVersion, data: version},
			{name: "memory configuration", addr: protocol.AddrMemoryConfig, data: memConfig},
			{name: "mac address", addr: protocol.AddrMACAddress, data: mac},
		},
	}
}

// Respond computes the reply to one request.
//
// resp is the complete response payload, status byte first. ok is false for
// request types outside the catalog; nothing should be sent for those.
func (d *Device) Respond(reqType byte, payload []byte) (respType byte, resp []byte, ok bool) {
	respType = protocol.ResponseTypeFor(reqType)

	switch reqType {
	case protocol.CmdGetChipID:
		resp = make([]byte, protocol.ChipIDResponseSize)
		resp[0] = protocol.StatusSuccess
		binary.BigEndian.PutUint32(resp[protocol.StatusSize:], d.config.ChipID)
		d.logInfo("get chip id", "chip_id", fmt.Sprintf("0x%08X", d.config.ChipID))

	case protocol.CmdReadRAM:
		addr, length, err := protocol.ParseReadRAMRequest(payload)
		if err != nil || int(length) > protocol.MaxPayloadSize-protocol.StatusSize {
			d.logError("malformed read ram request", "payload", fmt.Sprintf("% X", payload))
			return respType, status(protocol.StatusFailure), true
		}
		resp = append(status(protocol.StatusSuccess), d.ReadMemory(addr, length)...)

	case protocol.CmdSelectFlashType:
		code, addr, err := protocol.ParseSelectFlashTypeRequest(payload)
		if err != nil {
			d.logError("malformed select flash type request", "payload", fmt.Sprintf("% X", payload))
			return respType, status(protocol.StatusFailure), true
		}
		st := byte(protocol.StatusFailure)
		if code == protocol.FlashInternal {
			st = protocol.StatusSuccess
		}
		d.logInfo("select flash type", "type", code, "addr", fmt.Sprintf("0x%08X", addr), "status", fmt.Sprintf("0x%02X", st))
		resp = status(st)

	case protocol.CmdEraseFlash:
		d.logInfo("erase flash")
		resp = status(protocol.StatusSuccess)

	case protocol.CmdReset:
		d.logInfo("reset")
		resp = status(protocol.StatusSuccess)

	case protocol.CmdChangeBaud:
		// The emulated line speed is fixed.
		d.logInfo("change baud", "divisor", fmt.Sprintf("% X", payload))
		resp = status(protocol.StatusFailure)

	case protocol.CmdRAMWrite, protocol.CmdFlashWrite:
		addr, data, err := protocol.ParseAddressedWrite(payload)
		if err != nil {
			d.logError("malformed write request", "payload", fmt.Sprintf("% X", payload))
			return respType, status(protocol.StatusFailure), true
		}
		d.logDebug(protocol.CommandName(reqType), "addr", fmt.Sprintf("0x%08X", addr), "data", fmt.Sprintf("% x", data))
		d.record(reqType, addr, data)
		resp = status(protocol.StatusSuccess)

	default:
		d.logInfo("ignoring unsupported message type", "type", fmt.Sprintf("0x%02X", reqType))
		return 0, nil, false
	}

	return respType, resp, true
}

// ReadMemory returns length bytes of the emulated memory view starting at addr.
func (d *Device) ReadMemory(addr uint32, length uint16) []byte {
	out := make([]byte, length)
	start := uint64(addr)
	end := start + uint64(length)

	hit := false
	for _, r := range d.memory {
		rs := uint64(r.addr)
		re := rs + uint64(len(r.data))
		if re <= start || rs >= end {
			continue
		}
		hit = true

		lo, hi := max(rs, start), min(re, end)
		copy(out[lo-start:hi-start], r.data[lo-rs:hi-rs])
		d.logInfo("read "+r.name, "addr", fmt.Sprintf("0x%08X", addr), "len", length)
	}

	if !hit {
		d.logInfo("read of unmapped memory", "addr", fmt.Sprintf("0x%08X", addr), "len", length)
	}

	return out
}

func (d *Device) record(reqType byte, addr uint32, data []byte) {
	if d.config.WriteRecorder == nil {
		return
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	d.config.WriteRecorder(Write{Type: reqType, Addr: addr, Data: buf})
}

func status(code byte) []byte {
	return []byte{code}
}

func (d *Device) logDebug(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (d *Device) logInfo(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Info(msg, keysAndValues...)
	}
}

func (d *Device) logError(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Error(msg, keysAndValues...)
	}
}
