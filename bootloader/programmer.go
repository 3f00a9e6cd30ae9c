package bootloader

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-jnflash/firmware"
	"github.com/moffa90/go-jnflash/protocol"
)

// Programmer orchestrates firmware programming of a JN5169 through its
// serial bootloader. Exactly one request is outstanding at any time.
//
// A Programmer must not be used from more than one goroutine at once.
type Programmer struct {
	device io.ReadWriter
	config Config
}

// New creates a new Programmer with the given device and options.
// The device must implement io.ReadWriter for communication with the bootloader.
// If it also implements ReadTimeoutSetter, the configured read timeout is applied.
//
// Example:
//
//	port, _ := transport.OpenSerial("/dev/ttyUSB0")
//	prog := bootloader.New(port,
//	    bootloader.WithProgressCallback(progressFunc),
//	    bootloader.WithTimeout(2*time.Second),
//	)
func New(device io.ReadWriter, opts ...Option) *Programmer {
	if device == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Programmer{
		device: device,
		config: cfg,
	}

	if s, ok := device.(ReadTimeoutSetter); ok && cfg.ReadTimeout > 0 {
		if err := s.SetReadTimeout(cfg.ReadTimeout); err != nil {
			p.logError("failed to set read timeout", "timeout", cfg.ReadTimeout.String(), "error", err)
		}
	}

	return p
}

// ProgramFile loads the image at path and programs it.
// A file with a bad magic header is rejected before anything is sent.
func (p *Programmer) ProgramFile(ctx context.Context, path string) error {
	img, err := firmware.Parse(path)
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	return p.Program(ctx, img)
}

// Program performs the complete firmware programming sequence:
//  1. Read the chip ID and check it is a JN5169
//  2. Optionally read the MAC address
//  3. Select the internal flash
//  4. Erase the flash
//  5. Write the image in ascending chunks from address 0
//  6. Reset the chip
//
// The sequence stops at the first failure. The operation can be cancelled via
// context between steps and between chunks.
//
// Example:
//
//	img, _ := firmware.Parse("app.bin")
//	err := prog.Program(context.Background(), img)
func (p *Programmer) Program(ctx context.Context, img *firmware.Image) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}

	startTime := time.Now()
	chunkSize := p.config.ChunkSize
	totalChunks := img.ChunkCount(chunkSize)
	total := img.Size()

	progress := func(phase string, pct float64, chunk, written int) {
		p.reportProgress(Progress{
			Phase:        phase,
			CurrentChunk: chunk,
			TotalChunks:  totalChunks,
			Percentage:   pct,
			BytesWritten: written,
			TotalBytes:   total,
			ElapsedTime:  time.Since(startTime),
		})
	}

	// Step 1: identify
	progress(PhaseIdentifying, 0, 0, 0)

	chipID, err := p.GetChipID(ctx)
	if err != nil {
		return fmt.Errorf("identify: %w", err)
	}
	if chipID != protocol.ChipIDJN5169 {
		return fmt.Errorf("identify: %w", &UnsupportedDeviceError{
			Expected: protocol.ChipIDJN5169,
			Actual:   chipID,
		})
	}

	p.logDebug("chip identified", "chip_id", fmt.Sprintf("0x%08X", chipID))

	// Step 2: optional MAC read
	if p.config.ReadMAC {
		mac, err := p.ReadMAC(ctx)
		if err != nil {
			return fmt.Errorf("read mac: %w", err)
		}
		p.logInfo("device MAC address", "mac", mac.String())
	}

	// Step 3: select internal flash
	progress(PhaseSelecting, 2, 0, 0)

	if err := p.SelectFlash(ctx, protocol.FlashInternal); err != nil {
		return fmt.Errorf("select flash: %w", err)
	}

	// Step 4: erase
	progress(PhaseErasing, 4, 0, 0)

	if err := p.EraseFlash(ctx); err != nil {
		return fmt.Errorf("erase flash: %w", err)
	}

	// Step 5: write chunks (5% to 95%)
	progress(PhaseWriting, 5, 0, 0)

	written := 0
	for chunk := 0; written < total; chunk++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		end := written + chunkSize
		if end > total {
			end = total
		}

		addr := protocol.FlashBaseAddress + uint32(written)
		if err := p.WriteFlash(ctx, addr, img.Data[written:end]); err != nil {
			return fmt.Errorf("write flash at 0x%08X: %w", addr, err)
		}

		written = end
		progress(PhaseWriting, 5+(float64(chunk+1)/float64(totalChunks))*90, chunk+1, written)
	}

	// Step 6: reset
	progress(PhaseResetting, 97, totalChunks, written)

	if err := p.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	progress(PhaseComplete, 100, totalChunks, written)

	p.logInfo("programming complete",
		"chunks", totalChunks,
		"bytes", written,
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// GetChipID reads the chip identification register.
// It does not check whether the identity is supported.
func (p *Programmer) GetChipID(ctx context.Context) (uint32, error) {
	cmd, err := protocol.BuildGetChipIDCmd()
	if err != nil {
		return 0, err
	}

	data, err := p.execute(ctx, protocol.CmdGetChipID, cmd)
	if err != nil {
		return 0, err
	}

	return protocol.ParseGetChipIDResponse(data)
}

// ReadRAM reads length bytes of device memory starting at addr.
func (p *Programmer) ReadRAM(ctx context.Context, addr uint32, length uint16) ([]byte, error) {
	cmd, err := protocol.BuildReadRAMCmd(addr, length)
	if err != nil {
		return nil, err
	}

	data, err := p.execute(ctx, protocol.CmdReadRAM, cmd)
	if err != nil {
		return nil, err
	}

	return protocol.ParseReadRAMResponse(data, length)
}

// ReadMAC reads the factory MAC address.
func (p *Programmer) ReadMAC(ctx context.Context) (protocol.MACAddress, error) {
	data, err := p.ReadRAM(ctx, protocol.AddrMACAddress, protocol.MACReadLength)
	if err != nil {
		return protocol.MACAddress{}, err
	}
	return protocol.ParseMACResponse(data)
}

// ReadBootloaderVersion reads the bootloader version word.
func (p *Programmer) ReadBootloaderVersion(ctx context.Context) (uint32, error) {
	data, err := p.ReadRAM(ctx, protocol.AddrBootloaderVersion, protocol.BootloaderVersionSize)
	if err != nil {
		return 0, err
	}
	return protocol.ParseBootloaderVersionResponse(data)
}

// ReadMemoryConfig reads the chip memory configuration block.
func (p *Programmer) ReadMemoryConfig(ctx context.Context) (protocol.MemoryConfig, error) {
	data, err := p.ReadRAM(ctx, protocol.AddrMemoryConfig, protocol.MemoryConfigSize)
	if err != nil {
		return protocol.MemoryConfig{}, err
	}
	return protocol.ParseMemoryConfigResponse(data)
}

// SelectFlash selects the flash bank used by subsequent erase and write
// commands. Use protocol.FlashInternal for the on-chip flash.
func (p *Programmer) SelectFlash(ctx context.Context, flashType byte) error {
	cmd, err := protocol.BuildSelectFlashTypeCmd(flashType, protocol.FlashBaseAddress)
	if err != nil {
		return err
	}

	_, err = p.execute(ctx, protocol.CmdSelectFlashType, cmd)
	return err
}

// EraseFlash erases the selected flash.
func (p *Programmer) EraseFlash(ctx context.Context) error {
	cmd, err := protocol.BuildEraseFlashCmd()
	if err != nil {
		return err
	}

	_, err = p.execute(ctx, protocol.CmdEraseFlash, cmd)
	return err
}

// WriteFlash writes one block of data at a flash address.
// The block must not exceed protocol.MaxWriteDataSize bytes.
func (p *Programmer) WriteFlash(ctx context.Context, addr uint32, data []byte) error {
	cmd, err := protocol.BuildFlashWriteCmd(addr, data)
	if err != nil {
		return err
	}

	_, err = p.execute(ctx, protocol.CmdFlashWrite, cmd)
	return err
}

// WriteRAM writes one block of data at a RAM address.
func (p *Programmer) WriteRAM(ctx context.Context, addr uint32, data []byte) error {
	cmd, err := protocol.BuildRAMWriteCmd(addr, data)
	if err != nil {
		return err
	}

	_, err = p.execute(ctx, protocol.CmdRAMWrite, cmd)
	return err
}

// ChangeBaud asks the bootloader to switch to a new UART clock divisor.
// A StatusFailure reply means the divisor was not applied and is reported
// as changed == false rather than as an error.
func (p *Programmer) ChangeBaud(ctx context.Context, divisor byte) (changed bool, err error) {
	cmd, err := protocol.BuildChangeBaudCmd(divisor)
	if err != nil {
		return false, err
	}

	status, _, err := p.transact(ctx, protocol.CmdChangeBaud, cmd)
	if err != nil {
		return false, err
	}

	switch status {
	case protocol.StatusSuccess:
		return true, nil
	case protocol.StatusFailure:
		p.logDebug("baud rate not changed", "divisor", divisor)
		return false, nil
	default:
		return false, statusError(protocol.CmdChangeBaud, status)
	}
}

// Reset resets the chip.
func (p *Programmer) Reset(ctx context.Context) error {
	cmd, err := protocol.BuildResetCmd()
	if err != nil {
		return err
	}

	_, err = p.execute(ctx, protocol.CmdReset, cmd)
	return err
}

// execute runs one request and requires a success status.
func (p *Programmer) execute(ctx context.Context, requestType byte, cmd []byte) ([]byte, error) {
	status, data, err := p.transact(ctx, requestType, cmd)
	if err != nil {
		return nil, err
	}

	if status != protocol.StatusSuccess {
		return nil, statusError(requestType, status)
	}

	return data, nil
}

// transact writes one request frame and reads exactly one response frame.
// The response type must pair with requestType.
func (p *Programmer) transact(ctx context.Context, requestType byte, cmd []byte) (byte, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	p.logDebug("sending request",
		"command", protocol.CommandName(requestType),
		"length", len(cmd),
	)

	if _, err := p.device.Write(cmd); err != nil {
		return 0, nil, &protocol.TransportError{Op: "write", Err: err}
	}

	// Apply inter-command delay if configured
	if p.config.CommandDelay > 0 {
		select {
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		case <-time.After(p.config.CommandDelay):
		}
	}

	frame, err := protocol.Decode(p.device)
	if err != nil {
		return 0, nil, err
	}

	return protocol.ParseResponse(requestType, frame)
}

func statusError(requestType, status byte) error {
	resp := protocol.ResponseTypeFor(requestType)
	return &protocol.ProtocolError{
		Operation:    protocol.CommandName(requestType),
		StatusCode:   status,
		ExpectedType: resp,
		ActualType:   resp,
	}
}

// reportProgress calls the progress callback if configured.
func (p *Programmer) reportProgress(progress Progress) {
	if p.config.ProgressCallback != nil {
		p.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (p *Programmer) logDebug(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (p *Programmer) logInfo(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (p *Programmer) logError(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Error(msg, keysAndValues...)
	}
}
