// ABOUTME: Visualization CLI commands
// ABOUTME: Terminal dashboard and pipeline graph generation
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harperreed/salesflow/db"
	"github.com/harperreed/salesflow/viz"
)

var vizOutput string

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Visualize the demo CRM",
}

var vizDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the pipeline dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(database *sql.DB) error {
			state, err := db.LoadCRMState(database)
			if err != nil {
				return fmt.Errorf("failed to load CRM state: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), viz.RenderDashboard(viz.GenerateDashboardStats(state)))
			return nil
		})
	},
}

var vizPipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Generate the deal pipeline as a GraphViz graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(database *sql.DB) error {
			state, err := db.LoadCRMState(database)
			if err != nil {
				return fmt.Errorf("failed to load CRM state: %w", err)
			}
			graph, err := viz.GeneratePipelineGraph(cmd.Context(), state, logger)
			if err != nil {
				return err
			}
			if vizOutput != "" {
				return os.WriteFile(vizOutput, []byte(graph), 0644)
			}
			fmt.Fprintln(cmd.OutOrStdout(), graph)
			return nil
		})
	},
}

func init() {
	vizPipelineCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "output file (default stdout)")
	vizCmd.AddCommand(vizDashboardCmd, vizPipelineCmd)
	rootCmd.AddCommand(vizCmd)
}
