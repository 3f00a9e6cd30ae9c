package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "jnflash",
	Short: "JN5169 serial bootloader programmer",
	Long: `Program NXP JN5169 devices through the ROM serial bootloader, either on a
local serial line or through a remote bridge agent.

Examples:
  jnflash flash -t /dev/ttyUSB0 app.bin          # Flash over a local serial line
  jnflash flash -t tcp://pi.local app.bin        # Flash through a bridge agent
  jnflash info -t ws://pi.local:8080/ws          # Query a device over WebSocket
  jnflash emulate --listen :5169                 # Run an emulated device
  jnflash bridge --serial /dev/ttyAMA0           # Share a UART over the network`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			enableDebug()
		}
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error(err.Error())
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// addTargetFlag registers the --target flag shared by device commands.
func addTargetFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "target", "t", "",
		"device to talk to: /dev/ttyUSB0, serial://PATH, tcp://HOST[:PORT], HOST:PORT or ws://HOST/ws")
	_ = cmd.MarkFlagRequired("target")
}
