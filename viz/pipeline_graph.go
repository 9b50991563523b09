// ABOUTME: Deal pipeline graph rendered with graphviz
// ABOUTME: Links stages in order, deals to their stage and contacts to their deals
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"go.uber.org/zap"

	"github.com/harperreed/salesflow/models"
)

// GeneratePipelineGraph renders state as an xdot graph.
func GeneratePipelineGraph(ctx context.Context, state models.CRMState, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() {
		if err := gv.Close(); err != nil {
			logger.Warn("failed to close graphviz", zap.Error(err))
		}
	}()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() {
		if err := graph.Close(); err != nil {
			logger.Warn("failed to close graph", zap.Error(err))
		}
	}()

	graph.SetLabel("Deal Pipeline")
	graph.SetRankDir(cgraph.LRRank)

	stageNodes := make(map[string]*cgraph.Node)
	var prev *cgraph.Node
	for _, stage := range models.Stages {
		node, err := graph.CreateNodeByName("stage_" + stage)
		if err != nil {
			return "", fmt.Errorf("failed to create stage node: %w", err)
		}
		node.SetLabel(stageTitles[stage])
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("lightblue")
		stageNodes[stage] = node

		if prev != nil {
			edge, err := graph.CreateEdgeByName("next", prev, node)
			if err != nil {
				return "", fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("bold")
		}
		prev = node
	}

	contactNodes := make(map[int64]*cgraph.Node)
	for _, contact := range state.Contacts {
		node, err := graph.CreateNodeByName(fmt.Sprintf("contact_%d", contact.ID))
		if err != nil {
			return "", fmt.Errorf("failed to create contact node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", contact.Name, contact.Company))
		node.SetShape("ellipse")
		node.SetStyle("filled")
		node.SetFillColor("lightgreen")
		contactNodes[contact.ID] = node
	}

	for _, deal := range state.Deals {
		node, err := graph.CreateNodeByName(fmt.Sprintf("deal_%d", deal.ID))
		if err != nil {
			return "", fmt.Errorf("failed to create deal node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", deal.Name, FormatMoney(deal.Value)))
		node.SetShape("diamond")
		node.SetStyle("filled")
		node.SetFillColor("lightyellow")

		if stageNode, ok := stageNodes[deal.Stage]; ok {
			edge, err := graph.CreateEdgeByName("in_stage", stageNode, node)
			if err != nil {
				return "", fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dashed")
		}
		if contactNode, ok := contactNodes[deal.ContactID]; ok {
			edge, err := graph.CreateEdgeByName("owns", contactNode, node)
			if err != nil {
				return "", fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetLabel("deal")
			edge.SetStyle("dotted")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
