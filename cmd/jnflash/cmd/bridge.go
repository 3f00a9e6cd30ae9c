package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"

	"github.com/moffa90/go-jnflash/bridge"
	"github.com/moffa90/go-jnflash/transport"
)

var (
	bridgeSerial string
	bridgeListen string
	bridgeHTTP   string
	bridgeIdle   time.Duration
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Share a serial line with remote flashing tools",
	Long: `Run a bridge agent next to the device. While no tool is connected the
application's UART output is logged. A tool connecting over TCP or WebSocket
gets exclusive use of the line at the bootloader baud rate.

Examples:
  jnflash bridge --serial /dev/ttyAMA0
  jnflash bridge --serial /dev/ttyAMA0 --http :8080`,
	Args: cobra.NoArgs,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)

	bridgeCmd.Flags().StringVar(&bridgeSerial, "serial", "", "serial device connected to the JN5169")
	bridgeCmd.Flags().StringVar(&bridgeListen, "listen", bridge.DefaultAddr, "raw TCP tunnel address")
	bridgeCmd.Flags().StringVar(&bridgeHTTP, "http", "", "WebSocket tunnel address (serves /ws); empty disables it")
	bridgeCmd.Flags().DurationVar(&bridgeIdle, "idle-timeout", 30*time.Second, "end sessions silent for this long")
	_ = bridgeCmd.MarkFlagRequired("serial")
}

func runBridge(cmd *cobra.Command, args []string) error {
	port, err := serial.Open(bridgeSerial, transport.LineMode(transport.LoggingBaud))
	if err != nil {
		return err
	}

	opts := []bridge.Option{
		bridge.WithLogger(log),
		bridge.WithIdleTimeout(bridgeIdle),
	}

	line, err := bridge.NewLine(port, opts...)
	if err != nil {
		_ = port.Close()
		return err
	}
	defer line.Close()

	agent := bridge.NewAgent(line)

	ln, err := net.Listen("tcp", bridgeListen)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		return bridge.NewMonitor(line).Run(ctx)
	})
	g.Go(func() error {
		return agent.Serve(ctx, ln)
	})

	if bridgeHTTP != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", agent.WebSocketHandler())
		srv := &http.Server{
			Addr:              bridgeHTTP,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}

		g.Go(func() error {
			log.Info("websocket endpoint listening", "addr", bridgeHTTP, "path", "/ws")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	agent.Wait()
	return err
}
