package protocol

import "fmt"

// Command describes one request/response pair of the bootloader protocol.
type Command struct {
	// Name is the human-readable command name
	Name string

	// Request is the request message type
	Request byte

	// Response is the paired response message type (Request + 1)
	Response byte

	// RequestLayout documents the request payload
	RequestLayout string

	// ResponseLayout documents the response payload
	ResponseLayout string
}

var catalog = []Command{
	{
		Name:           "get chip id",
		Request:        CmdGetChipID,
		Response:       RespGetChipID,
		RequestLayout:  "(empty)",
		ResponseLayout: "[STATUS][CHIP_ID(4, big-endian)]",
	},
	{
		Name:           "read ram",
		Request:        CmdReadRAM,
		Response:       RespReadRAM,
		RequestLayout:  "[ADDR(4, LE)][LEN(2, LE)]",
		ResponseLayout: "[STATUS][DATA(LEN)]",
	},
	{
		Name:           "select flash type",
		Request:        CmdSelectFlashType,
		Response:       RespSelectFlashType,
		RequestLayout:  "[FLASH_CODE][ADDR(4, LE)]",
		ResponseLayout: "[STATUS]",
	},
	{
		Name:           "erase flash",
		Request:        CmdEraseFlash,
		Response:       RespEraseFlash,
		RequestLayout:  "(empty)",
		ResponseLayout: "[STATUS]",
	},
	{
		Name:           "reset",
		Request:        CmdReset,
		Response:       RespReset,
		RequestLayout:  "(empty)",
		ResponseLayout: "[STATUS]",
	},
	{
		Name:           "change baud",
		Request:        CmdChangeBaud,
		Response:       RespChangeBaud,
		RequestLayout:  "[DIVISOR]",
		ResponseLayout: "[STATUS]",
	},
	{
		Name:           "ram write",
		Request:        CmdRAMWrite,
		Response:       RespRAMWrite,
		RequestLayout:  "[ADDR(4, LE)][DATA...]",
		ResponseLayout: "[STATUS]",
	},
	{
		Name:           "flash write",
		Request:        CmdFlashWrite,
		Response:       RespFlashWrite,
		RequestLayout:  "[ADDR(4, LE)][DATA...]",
		ResponseLayout: "[STATUS]",
	},
}

// Commands returns a copy of the command catalog.
func Commands() []Command {
	out := make([]Command, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for a request type.
func Lookup(requestType byte) (Command, bool) {
	for _, c := range catalog {
		if c.Request == requestType {
			return c, true
		}
	}
	return Command{}, false
}

// ResponseTypeFor returns the response type paired with requestType.
func ResponseTypeFor(requestType byte) byte {
	return requestType + 1
}

// CommandName returns the catalog name of a request type, or a hex
// placeholder for types outside the catalog.
func CommandName(requestType byte) string {
	if c, ok := Lookup(requestType); ok {
		return c.Name
	}
	return fmt.Sprintf("unknown command 0x%02X", requestType)
}
