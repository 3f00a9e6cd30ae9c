package cmd

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-jnflash/bootloader"
	"github.com/moffa90/go-jnflash/protocol"
	"github.com/moffa90/go-jnflash/transport"
)

var (
	infoTarget  string
	infoTimeout time.Duration
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show chip identity, MAC address and memory configuration",
	Long: `Query the bootloader without touching flash.

Examples:
  jnflash info -t /dev/ttyUSB0
  jnflash info -t ws://pi.local:8080/ws`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	addTargetFlag(infoCmd, &infoTarget)
	infoCmd.Flags().DurationVar(&infoTimeout, "timeout", 5*time.Second, "per-response timeout")
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ch, err := transport.Open(ctx, infoTarget)
	if err != nil {
		return err
	}
	defer ch.Close()

	prog := bootloader.New(ch,
		bootloader.WithLogger(log),
		bootloader.WithReadTimeout(infoTimeout),
	)

	chipID, err := prog.GetChipID(ctx)
	if err != nil {
		return err
	}
	version, err := prog.ReadBootloaderVersion(ctx)
	if err != nil {
		return err
	}
	mac, err := prog.ReadMAC(ctx)
	if err != nil {
		return err
	}
	memCfg, err := prog.ReadMemoryConfig(ctx)
	if err != nil {
		return err
	}

	chip := fmt.Sprintf("0x%08X", chipID)
	if chipID == protocol.ChipIDJN5169 {
		chip += " (JN5169)"
	}

	data := pterm.TableData{
		{"Property", "Value"},
		{"Chip ID", chip},
		{"Bootloader version", fmt.Sprintf("%d", version)},
		{"MAC address", mac.String()},
	}
	for i, word := range memCfg {
		data = append(data, []string{fmt.Sprintf("Memory config %d", i), fmt.Sprintf("0x%08X", word)})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
