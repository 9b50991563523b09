// ABOUTME: chat command talking to the CRM demo agent from a terminal
// ABOUTME: Full-screen TUI on a terminal, line mode when piped
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/gateway"
	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/session"
	"github.com/harperreed/salesflow/tui"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the CRM demo agent",
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

		if !chatPlain && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
			return tui.Run(ctx, s)
		}
		return chatLines(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// chatLines reads one message per line and prints the agent's replies.
func chatLines(ctx context.Context, s *session.CRMSession, in io.Reader, out io.Writer) error {
	emit := agent.EmitterFunc(func(e agent.Event) {
		switch e.Type {
		case agent.EventMessage:
			if p, ok := e.Payload.(agent.MessagePayload); ok && p.Role == models.RoleAssistant {
				fmt.Fprintf(out, "assistant: %s\n", agent.PlainText(p.Text))
			}
		case agent.EventSwitchTab:
			fmt.Fprintf(out, "  [tab] %s\n", e.Target)
		case agent.EventHighlight:
			fmt.Fprintf(out, "  [highlight] %s\n", e.Target)
		}
	})

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}
		if line == "/reset" {
			s.Reset(emit)
			continue
		}
		if _, err := s.Submit(ctx, line, emit); err != nil && !gateway.IsGatewayError(err) {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "line mode even on a terminal")
	rootCmd.AddCommand(chatCmd)
}
