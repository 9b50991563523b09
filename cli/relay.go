// ABOUTME: relay command running the standalone API relay
// ABOUTME: Forwards /api/messages to the upstream model API with the server-side key
package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/salesflow/relay"
)

var relayAddr string

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run the model API relay on its own port",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rl, err := relay.New(relay.Config{
			APIKey:   cfg.Relay.APIKey,
			Upstream: cfg.Relay.Upstream,
			Timeout:  cfg.Relay.Timeout,
		}, logger)
		if err != nil {
			return err
		}

		addr := cfg.Relay.Addr
		if relayAddr != "" {
			addr = relayAddr
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Relay listening on http://%s%s\n", displayAddr(addr), relay.MessagesPath)
		return rl.ListenAndServe(ctx, addr)
	},
}

func init() {
	relayCmd.Flags().StringVar(&relayAddr, "addr", "", "listen address (default from config, :3000)")
	rootCmd.AddCommand(relayCmd)
}
