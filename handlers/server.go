// ABOUTME: MCP server assembly for the CRM demo
// ABOUTME: Registers every tool and resource against one session
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/salesflow/session"
)

func NewServer(s *session.CRMSession, version string) *mcp.Server {
	h := NewCRMHandlers(s)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "salesflow",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "switch_tab",
		Description: "Switch the demo to the dashboard, contacts or deals tab",
	}, h.SwitchTab)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a contact to the demo CRM",
	}, h.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_deal",
		Description: "Create a deal for an existing contact",
	}, h.AddDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_deal",
		Description: "Move a deal to another pipeline stage",
	}, h.MoveDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "highlight_contact",
		Description: "Briefly highlight a contact row",
	}, h.HighlightContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "highlight_deal",
		Description: "Briefly highlight a deal card",
	}, h.HighlightDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "show_contact",
		Description: "Open the detail view for a contact",
	}, h.ShowContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_crm_state",
		Description: "Return all records, the current tab and dashboard statistics",
	}, h.GetState)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_agent",
		Description: "Send a message to the sales assistant and let it drive the demo",
	}, h.AskAgent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reset_demo",
		Description: "Clear all records, activity and conversation history",
	}, h.ResetDemo)

	for _, r := range []struct{ uri, name, desc string }{
		{"crm://contacts", "contacts", "All contacts"},
		{"crm://deals", "deals", "All deals"},
		{"crm://activity", "activity", "Activity feed, oldest first"},
		{"crm://pipeline", "pipeline", "Dashboard statistics and pipeline board"},
	} {
		server.AddResource(&mcp.Resource{
			URI:         r.uri,
			Name:        r.name,
			Description: r.desc,
			MIMEType:    "application/json",
		}, h.ReadResource)
	}

	return server
}
