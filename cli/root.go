// ABOUTME: Root cobra command and version information
// ABOUTME: Loads configuration and the logger before any subcommand runs
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/salesflow/config"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var (
	configFile string
	dbPathFlag string
	verbose    bool
	offline    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "salesflow",
	Short: "SalesFlow - an AI-guided CRM demo and discovery tour",
	Long: `SalesFlow runs a self-driving CRM demo and a buyer discovery tour.

An assistant reads each message, answers in plain language and drives the
interface: switching tabs, adding contacts and deals, moving deals through the
pipeline and showing the most relevant videos and documents.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if dbPathFlag != "" {
			loaded.DBPath = dbPathFlag
		}
		if offline {
			loaded.Charm.Offline = true
		}
		cfg = loaded

		l, err := newLogger(verbose, cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "salesflow %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/salesflow/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db-path", "", "database file path (default $XDG_DATA_HOME/salesflow/crm.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "keep the content library in a local badger store")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
