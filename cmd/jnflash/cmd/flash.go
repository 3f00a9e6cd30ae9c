package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-jnflash/bootloader"
	"github.com/moffa90/go-jnflash/firmware"
	"github.com/moffa90/go-jnflash/protocol"
	"github.com/moffa90/go-jnflash/transport"
)

var (
	flashTarget    string
	flashChunkSize int
	flashTimeout   time.Duration
	flashReadMAC   bool
)

var flashCmd = &cobra.Command{
	Use:   "flash <image>",
	Short: "Write a firmware image to the device",
	Long: `Identify the device, erase its internal flash, write the image in chunks
and reset the device into the new application.

The image must start with the 0F 03 00 0B header.

Examples:
  jnflash flash -t /dev/ttyUSB0 app.bin
  jnflash flash -t tcp://pi.local --chunk-size 64 app.bin`,
	Args: cobra.ExactArgs(1),
	RunE: runFlash,
}

func init() {
	rootCmd.AddCommand(flashCmd)

	addTargetFlag(flashCmd, &flashTarget)
	flashCmd.Flags().IntVar(&flashChunkSize, "chunk-size", protocol.DefaultChunkSize,
		fmt.Sprintf("bytes per flash write (1-%d)", protocol.MaxWriteDataSize))
	flashCmd.Flags().DurationVar(&flashTimeout, "timeout", 5*time.Second, "per-response timeout")
	flashCmd.Flags().BoolVar(&flashReadMAC, "mac", false, "read and log the MAC address before erasing")
}

func runFlash(cmd *cobra.Command, args []string) error {
	if flashChunkSize < 1 || flashChunkSize > protocol.MaxWriteDataSize {
		return fmt.Errorf("--chunk-size must be between 1 and %d", protocol.MaxWriteDataSize)
	}

	img, err := firmware.Parse(args[0])
	if err != nil {
		return err
	}
	log.Info("image loaded",
		"path", args[0],
		"size", humanize.Bytes(uint64(img.Size())),
		"chunks", img.ChunkCount(flashChunkSize))

	ctx := cmd.Context()
	ch, err := transport.Open(ctx, flashTarget)
	if err != nil {
		return err
	}
	defer ch.Close()

	progress := newProgressRenderer(img.Size())
	prog := bootloader.New(ch,
		bootloader.WithLogger(log),
		bootloader.WithProgressCallback(progress.update),
		bootloader.WithChunkSize(flashChunkSize),
		bootloader.WithReadTimeout(flashTimeout),
		bootloader.WithReadMAC(flashReadMAC),
	)

	start := time.Now()
	err = prog.Program(ctx, img)
	progress.finish(err == nil)
	if err != nil {
		if bootloader.IsUnsupportedDeviceError(err) {
			return fmt.Errorf("wrong device connected: %w", err)
		}
		return err
	}

	log.Info("flash complete",
		"target", flashTarget,
		"written", humanize.Bytes(uint64(img.Size())),
		"duration", time.Since(start).Round(time.Millisecond).String())
	return nil
}
