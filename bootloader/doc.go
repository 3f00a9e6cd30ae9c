// Package bootloader provides a high-level API for programming NXP JN5169
// wireless microcontrollers through their serial bootloader.
//
// # Overview
//
// This package orchestrates the complete firmware programming sequence:
//   - Identifying the chip and refusing anything but a JN5169
//   - Optionally reading the factory MAC address
//   - Selecting and erasing the internal flash
//   - Writing the image in fixed-size chunks from address 0
//   - Resetting the chip into the new firmware
//
// # Basic Usage
//
// The simplest way to program a device:
//
//	// Any io.ReadWriter connected to the bootloader UART
//	port, err := transport.OpenSerial("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	img, err := firmware.Parse("app.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	prog := bootloader.New(port)
//	if err := prog.Program(context.Background(), img); err != nil {
//	    log.Fatal(err)
//	}
//
// # Progress Tracking
//
// Track programming progress with a callback:
//
//	prog := bootloader.New(port,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("[%s] %.1f%% - chunk %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentChunk, p.TotalChunks)
//	    }),
//	)
//
// # Configuration Options
//
// Customize behavior with functional options:
//
//	prog := bootloader.New(port,
//	    bootloader.WithProgressCallback(progressFunc),
//	    bootloader.WithLogger(myLogger),
//	    bootloader.WithTimeout(2*time.Second),
//	    bootloader.WithChunkSize(64),
//	    bootloader.WithReadMAC(true),
//	)
//
// # Context Support
//
// Cancellation is checked before every request and between chunks:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
//	defer cancel()
//
//	err := prog.Program(ctx, img)
//
// # Error Handling
//
// Program stops at the first failure and prefixes the error with the step
// that failed ("identify", "select flash", "write flash at 0x00000080", ...).
// The cause is one of:
//   - UnsupportedDeviceError: the chip is not a JN5169
//   - protocol.ProtocolError: wrong response type or failure status
//   - protocol.FramingError, protocol.ChecksumError: damaged response
//   - protocol.TransportError: write failure or read timeout
//
// Nothing is retried. A failed run must be restarted from the beginning.
package bootloader
