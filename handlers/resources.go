// ABOUTME: MCP resource handlers for the CRM demo
// ABOUTME: Exposes read-only JSON views of the session's records via crm:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/salesflow/viz"
)

// ReadResource serves crm://contacts, crm://deals, crm://activity and
// crm://pipeline.
func (h *CRMHandlers) ReadResource(_ context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}

	snap := h.session.Snapshot()
	var payload any
	switch strings.TrimPrefix(uri, "crm://") {
	case "contacts":
		payload = snap.Contacts
	case "deals":
		payload = snap.Deals
	case "activity":
		payload = snap.Activity
	case "pipeline":
		payload = viz.GenerateDashboardStats(snap)
	default:
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{URI: uri, MIMEType: "application/json", Text: string(data)},
	}}, nil
}
