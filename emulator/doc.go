// Package emulator implements the device side of the JN5169 bootloader
// protocol, so flashing tools can be exercised without hardware.
//
// A Device answers each request frame with the paired response:
//
//	dev := emulator.New(emulator.WithLogger(logger))
//	respType, resp, ok := dev.Respond(protocol.CmdGetChipID, nil)
//
// A Server runs the decode, respond, encode loop over any byte stream, or
// accepts TCP peers one at a time:
//
//	srv := emulator.NewServer(dev)
//	err := srv.ServeListener(ctx, ln)
//
// The emulated memory holds the bootloader version, the factory MAC address
// and the memory configuration block. Every other address reads as zeros.
// Writes are acknowledged and reported through WithWriteRecorder; they are
// not stored.
package emulator
