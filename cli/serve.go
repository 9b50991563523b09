// ABOUTME: serve command running the web demo, tour and admin pages
// ABOUTME: Mounts the relay on the same listener when an API key is configured
package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/relay"
	"github.com/harperreed/salesflow/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web CRM demo, discovery tour and admin pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		rl, err := relay.New(relay.Config{
			APIKey:   cfg.Relay.APIKey,
			Upstream: cfg.Relay.Upstream,
			Timeout:  cfg.Relay.Timeout,
		}, logger)
		switch {
		case errors.Is(err, relay.ErrMissingAPIKey):
			logger.Warn("no API key configured; relay not mounted")
		case err != nil:
			return err
		}

		srv, err := web.NewServer(web.Config{
			DB:           database,
			Library:      lib,
			Gateway:      newGateway(),
			Relay:        rl,
			Decoder:      agent.Decoder{Strict: cfg.Agent.Strict},
			Dispatch:     dispatchOptions(),
			HistoryLimit: cfg.Agent.HistoryLimit,
			Logger:       logger,
		})
		if err != nil {
			return err
		}

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		fmt.Fprintf(cmd.OutOrStdout(), "SalesFlow running at http://%s\n", displayAddr(addr))
		logger.Info("serving", zap.String("addr", addr), zap.Bool("relay", rl != nil))
		return srv.ListenAndServe(ctx, addr)
	},
}

// displayAddr fills in localhost for listen addresses without a host.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}
