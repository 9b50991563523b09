// ABOUTME: Library sync CLI commands
// ABOUTME: Status, manual sync, auto-sync toggle and wipe for the charm store
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/salesflow/charm"
)

var wipeConfirm bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the content library with Charm Cloud",
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharm(func(c *charm.Client) error {
			return charm.SyncStatus(cmd.OutOrStdout(), c)
		})
	},
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Sync immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharm(func(c *charm.Client) error {
			return charm.SyncNow(cmd.OutOrStdout(), c)
		})
	},
}

var syncAutoCmd = &cobra.Command{
	Use:       "auto <on|off>",
	Short:     "Turn automatic sync after writes on or off",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharm(func(c *charm.Client) error {
			return charm.SetAutoSync(cmd.OutOrStdout(), c, args[0] == "on")
		})
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete the whole content library",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharm(func(c *charm.Client) error {
			if err := charm.Wipe(cmd.OutOrStdout(), c, wipeConfirm); err != nil {
				return fmt.Errorf("wipe failed: %w", err)
			}
			return nil
		})
	},
}

func init() {
	syncWipeCmd.Flags().BoolVar(&wipeConfirm, "confirm", false, "confirm deletion")
	syncCmd.AddCommand(syncStatusCmd, syncNowCmd, syncAutoCmd, syncWipeCmd)
	rootCmd.AddCommand(syncCmd)
}
