// ABOUTME: mcp command exposing the CRM demo as an MCP server over stdio
// ABOUTME: Tools drive the same session the web and terminal clients use
package cli

import (
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/harperreed/salesflow/handlers"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Start an MCP server that lets an assistant operate the CRM demo.

Tools switch tabs, add contacts and deals, move deals between stages,
highlight records and forward free-form requests to the demo agent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		s, err := newCRMSession(database, newGateway())
		if err != nil {
			return err
		}
		defer s.Close()

		server := handlers.NewServer(s, appVersion)
		return server.Run(ctx, &mcp.StdioTransport{})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
