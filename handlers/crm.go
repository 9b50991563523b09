// ABOUTME: CRM demo MCP tool handlers
// ABOUTME: Drives a CRM session directly or through the assistant
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/session"
	"github.com/harperreed/salesflow/viz"
)

type CRMHandlers struct {
	session *session.CRMSession
}

func NewCRMHandlers(s *session.CRMSession) *CRMHandlers {
	return &CRMHandlers{session: s}
}

type SwitchTabInput struct {
	Tab string `json:"tab" jsonschema:"Tab to show: dashboard, contacts or deals"`
}

type AddContactInput struct {
	Name    string `json:"name" jsonschema:"Contact name (required)"`
	Company string `json:"company" jsonschema:"Company name (required)"`
	Email   string `json:"email" jsonschema:"Email address (required)"`
	Phone   string `json:"phone,omitempty" jsonschema:"Phone number"`
	Status  string `json:"status,omitempty" jsonschema:"lead, prospect or customer (default lead)"`
}

type AddDealInput struct {
	Name      string `json:"name" jsonschema:"Deal name (required)"`
	ContactID int64  `json:"contact_id" jsonschema:"ID of the owning contact (required)"`
	Value     int64  `json:"value,omitempty" jsonschema:"Deal value in whole dollars"`
	Stage     string `json:"stage,omitempty" jsonschema:"prospecting, proposal, negotiation or won (default prospecting)"`
}

type MoveDealInput struct {
	DealID int64  `json:"deal_id" jsonschema:"Deal ID (required)"`
	Stage  string `json:"stage" jsonschema:"Target pipeline stage (required)"`
}

type RecordInput struct {
	ID int64 `json:"id" jsonschema:"Record ID (required)"`
}

type AskAgentInput struct {
	Message string `json:"message" jsonschema:"What to ask the sales assistant"`
}

type EmptyInput struct{}

// ActionOutput reports the state after a direct action.
type ActionOutput struct {
	CurrentTab string `json:"current_tab"`
	Highlight  string `json:"highlight,omitempty"`
	Message    string `json:"message"`
}

type ContactOutput struct {
	Contact models.Contact `json:"contact"`
}

type DealOutput struct {
	Deal models.Deal `json:"deal"`
}

type StateOutput struct {
	State models.CRMState    `json:"state"`
	Stats viz.DashboardStats `json:"stats"`
}

type AskAgentOutput struct {
	Narration string   `json:"narration"`
	Actions   []string `json:"actions"`
	Ignored   []string `json:"ignored,omitempty"`
}

func (h *CRMHandlers) result(message string) ActionOutput {
	s := h.session.Snapshot()
	return ActionOutput{CurrentTab: s.CurrentTab, Highlight: s.Highlight, Message: message}
}

func (h *CRMHandlers) SwitchTab(ctx context.Context, _ *mcp.CallToolRequest, input SwitchTabInput) (*mcp.CallToolResult, ActionOutput, error) {
	tab := strings.TrimSpace(input.Tab)
	if !models.IsValidTab(tab) {
		return nil, ActionOutput{}, fmt.Errorf("invalid tab %q: must be one of %s", input.Tab, strings.Join(models.Tabs, ", "))
	}
	if err := h.session.Perform(ctx, nil, agent.SwitchTab{Tab: tab}); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, h.result("switched to " + tab), nil
}

func (h *CRMHandlers) AddContact(_ context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	c, err := h.session.AddContact(session.ContactForm{
		Name:    input.Name,
		Company: input.Company,
		Email:   input.Email,
		Phone:   input.Phone,
		Status:  input.Status,
	}, nil)
	if err != nil {
		return nil, ContactOutput{}, err
	}
	return nil, ContactOutput{Contact: c}, nil
}

func (h *CRMHandlers) AddDeal(_ context.Context, _ *mcp.CallToolRequest, input AddDealInput) (*mcp.CallToolResult, DealOutput, error) {
	d, err := h.session.AddDeal(session.DealForm{
		Name:      input.Name,
		ContactID: input.ContactID,
		Value:     input.Value,
		Stage:     input.Stage,
	}, nil)
	if err != nil {
		return nil, DealOutput{}, err
	}
	return nil, DealOutput{Deal: d}, nil
}

func (h *CRMHandlers) MoveDeal(ctx context.Context, _ *mcp.CallToolRequest, input MoveDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if !models.IsValidStage(input.Stage) {
		return nil, DealOutput{}, fmt.Errorf("invalid stage %q: must be one of %s", input.Stage, strings.Join(models.Stages, ", "))
	}
	snap := h.session.Snapshot()
	if snap.FindDeal(input.DealID) == nil {
		return nil, DealOutput{}, fmt.Errorf("deal not found: %d", input.DealID)
	}
	if err := h.session.Perform(ctx, nil, agent.MoveDeal{DealID: input.DealID, Stage: input.Stage}); err != nil {
		return nil, DealOutput{}, err
	}
	snap = h.session.Snapshot()
	return nil, DealOutput{Deal: *snap.FindDeal(input.DealID)}, nil
}

func (h *CRMHandlers) HighlightContact(ctx context.Context, _ *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, ActionOutput, error) {
	if snap := h.session.Snapshot(); snap.FindContact(input.ID) == nil {
		return nil, ActionOutput{}, fmt.Errorf("contact not found: %d", input.ID)
	}
	if err := h.session.Perform(ctx, nil, agent.HighlightContact{ContactID: input.ID}); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, h.result("highlighted " + agent.ContactKey(input.ID)), nil
}

func (h *CRMHandlers) HighlightDeal(ctx context.Context, _ *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, ActionOutput, error) {
	if snap := h.session.Snapshot(); snap.FindDeal(input.ID) == nil {
		return nil, ActionOutput{}, fmt.Errorf("deal not found: %d", input.ID)
	}
	if err := h.session.Perform(ctx, nil, agent.HighlightDeal{DealID: input.ID}); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, h.result("highlighted " + agent.DealKey(input.ID)), nil
}

func (h *CRMHandlers) ShowContact(ctx context.Context, _ *mcp.CallToolRequest, input RecordInput) (*mcp.CallToolResult, ContactOutput, error) {
	snap := h.session.Snapshot()
	c := snap.FindContact(input.ID)
	if c == nil {
		return nil, ContactOutput{}, fmt.Errorf("contact not found: %d", input.ID)
	}
	if err := h.session.Perform(ctx, nil, agent.ShowContact{ContactID: input.ID}); err != nil {
		return nil, ContactOutput{}, err
	}
	return nil, ContactOutput{Contact: *c}, nil
}

func (h *CRMHandlers) GetState(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StateOutput, error) {
	snap := h.session.Snapshot()
	return nil, StateOutput{State: snap, Stats: *viz.GenerateDashboardStats(snap)}, nil
}

func (h *CRMHandlers) AskAgent(ctx context.Context, _ *mcp.CallToolRequest, input AskAgentInput) (*mcp.CallToolResult, AskAgentOutput, error) {
	turn, err := h.session.Submit(ctx, input.Message, nil)
	if err != nil {
		return nil, AskAgentOutput{}, err
	}
	names := make([]string, 0, len(turn.Actions))
	for _, a := range turn.Actions {
		names = append(names, a.Kind())
	}
	return nil, AskAgentOutput{
		Narration: agent.PlainText(turn.Narration),
		Actions:   names,
		Ignored:   turn.Ignored,
	}, nil
}

func (h *CRMHandlers) ResetDemo(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, ActionOutput, error) {
	h.session.Reset(nil)
	return nil, h.result("demo reset"), nil
}
