package protocol

// Frame structure constants.
const (
	// HeaderSize is the number of bytes read before the length is known:
	// LEN(1) + TYPE(1)
	HeaderSize = 2

	// MinFrameSize is the smallest valid frame: LEN(1) + TYPE(1) + CHECKSUM(1)
	MinFrameSize = 3

	// MinLength is the smallest legal value of the length byte (empty payload)
	MinLength = 2

	// MaxPayloadSize is the largest payload a single frame can carry.
	// The length byte encodes len(payload)+2 and must fit in one byte.
	MaxPayloadSize = 0xFF - MinLength
)

// Request message types accepted by the bootloader.
const (
	// CmdEraseFlash erases the currently selected flash
	CmdEraseFlash = 0x07

	// CmdFlashWrite writes a block of data at a flash address
	CmdFlashWrite = 0x09

	// CmdReset resets the chip
	CmdReset = 0x14

	// CmdRAMWrite writes a block of data at a RAM address
	CmdRAMWrite = 0x1D

	// CmdReadRAM reads a block of memory
	CmdReadRAM = 0x1F

	// CmdChangeBaud requests a new UART clock divisor
	CmdChangeBaud = 0x27

	// CmdSelectFlashType selects the flash bank used by erase and write
	CmdSelectFlashType = 0x2C

	// CmdGetChipID reads the chip identification register
	CmdGetChipID = 0x32
)

// Response message types. Every response type is its request type + 1.
const (
	RespEraseFlash      = CmdEraseFlash + 1
	RespFlashWrite      = CmdFlashWrite + 1
	RespReset           = CmdReset + 1
	RespRAMWrite        = CmdRAMWrite + 1
	RespReadRAM         = CmdReadRAM + 1
	RespChangeBaud      = CmdChangeBaud + 1
	RespSelectFlashType = CmdSelectFlashType + 1
	RespGetChipID       = CmdGetChipID + 1
)

// Status codes carried in the first payload byte of every response.
const (
	// StatusSuccess indicates the command was executed
	StatusSuccess = 0x00

	// StatusFailure is the bootloader's generic failure code. ChangeBaud
	// answers with it when the divisor was not applied.
	StatusFailure = 0xFF
)

// Target identity.
const (
	// ChipIDJN5169 is the only chip identity this library programs
	ChipIDJN5169 uint32 = 0x0000B686
)

// Flash selection.
const (
	// FlashInternal is the SelectFlashType code for the on-chip flash
	FlashInternal = 0x08

	// FlashBaseAddress is the first address of the internal flash
	FlashBaseAddress uint32 = 0x00000000
)

// Well-known memory addresses readable with ReadRAM.
const (
	// AddrBootloaderVersion holds the 32-bit bootloader version (little-endian)
	AddrBootloaderVersion uint32 = 0x00000062

	// AddrMemoryConfig holds the memory configuration words
	AddrMemoryConfig uint32 = 0x01001500

	// AddrMACAddress holds the factory MAC address
	AddrMACAddress uint32 = 0x01001570
)

// Payload sizes.
const (
	// StatusSize is the size of the status byte
	StatusSize = 1

	// AddressSize is the size of an address field (4 bytes, little-endian)
	AddressSize = 4

	// ChipIDResponseSize is status(1) + chip ID(4)
	ChipIDResponseSize = StatusSize + 4

	// ReadRAMRequestSize is address(4) + length(2)
	ReadRAMRequestSize = AddressSize + 2

	// SelectFlashRequestSize is flash code(1) + address(4)
	SelectFlashRequestSize = 1 + AddressSize

	// MACReadLength is the number of bytes requested when reading the MAC
	MACReadLength = 8

	// MACSize is the number of address bytes reported after the reserved byte
	MACSize = 7

	// BootloaderVersionSize is the size of the bootloader version word
	BootloaderVersionSize = 4

	// MemoryConfigSize is four 32-bit configuration words
	MemoryConfigSize = 16

	// MaxWriteDataSize is the largest data block that fits a write frame
	// after the address field.
	MaxWriteDataSize = MaxPayloadSize - AddressSize
)

// DefaultChunkSize is the flash write block size, sized to the target's
// receive buffer.
const DefaultChunkSize = 128
