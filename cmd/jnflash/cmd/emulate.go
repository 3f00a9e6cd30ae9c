package cmd

import (
	"context"
	"errors"
	"net"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-jnflash/emulator"
	"github.com/moffa90/go-jnflash/protocol"
	"github.com/moffa90/go-jnflash/transport"
)

var (
	emulateListen  string
	emulateSerial  string
	emulateChipID  uint32
	emulateVersion uint32
)

var emulateCmd = &cobra.Command{
	Use:   "emulate",
	Short: "Run an emulated JN5169 bootloader",
	Long: `Answer bootloader traffic like a JN5169 would, either on a TCP listener or
on a serial line. Flash and RAM writes are acknowledged and logged.

Examples:
  jnflash emulate --listen 127.0.0.1:5169
  jnflash emulate --serial /dev/ttyUSB1`,
	Args: cobra.NoArgs,
	RunE: runEmulate,
}

func init() {
	rootCmd.AddCommand(emulateCmd)

	emulateCmd.Flags().StringVar(&emulateListen, "listen", "", "TCP address to serve on")
	emulateCmd.Flags().StringVar(&emulateSerial, "serial", "", "serial device to serve on")
	emulateCmd.Flags().Uint32Var(&emulateChipID, "chip-id", protocol.ChipIDJN5169, "chip ID to report")
	emulateCmd.Flags().Uint32Var(&emulateVersion, "bootloader-version", 42, "bootloader version to report")
	emulateCmd.MarkFlagsMutuallyExclusive("listen", "serial")
	emulateCmd.MarkFlagsOneRequired("listen", "serial")
}

func runEmulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dev := emulator.New(
		emulator.WithLogger(log),
		emulator.WithChipID(emulateChipID),
		emulator.WithBootloaderVersion(emulateVersion),
		emulator.WithWriteRecorder(func(w emulator.Write) {
			log.Info("write",
				"type", protocol.CommandName(w.Type),
				"addr", w.Addr,
				"len", len(w.Data))
		}),
	)
	srv := emulator.NewServer(dev)

	if emulateSerial != "" {
		port, err := transport.OpenSerial(emulateSerial, transport.BootloaderBaud)
		if err != nil {
			return err
		}
		log.Info("emulating on serial line", "port", emulateSerial, "baud", transport.BootloaderBaud)

		if err := srv.Serve(ctx, port); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	ln, err := net.Listen("tcp", emulateListen)
	if err != nil {
		return err
	}
	log.Info("emulating on TCP", "addr", ln.Addr().String())

	return srv.ServeListener(ctx, ln)
}
