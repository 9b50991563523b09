// ABOUTME: Board panel rendering for the terminal client
// ABOUTME: Dashboard stats, contact list and deal pipeline with live highlight
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/viz"
)

const feedInPanel = 5

func (m Model) renderBoard() string {
	var s strings.Builder
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.detail != nil {
		s.WriteString(renderContactDetail(*m.detail))
		return s.String()
	}

	switch m.tab {
	case models.TabContacts:
		s.WriteString(renderContacts(m.state))
	case models.TabDeals:
		s.WriteString(renderDeals(m.state))
	default:
		s.WriteString(renderDashboard(m.state))
	}
	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for _, tab := range models.Tabs {
		label := strings.ToUpper(tab[:1]) + tab[1:]
		if tab == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(label))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderDashboard(state models.CRMState) string {
	stats := viz.GenerateDashboardStats(state)
	var s strings.Builder

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", label)))
		s.WriteString(valueStyle.Render(value))
		s.WriteString("\n")
	}
	row("Total Contacts", fmt.Sprintf("%d", stats.TotalContacts))
	row("Active Deals", fmt.Sprintf("%d", stats.ActiveDeals))
	row("Pipeline Value", viz.FormatMoney(stats.PipelineValue))
	row("Conversion Rate", fmt.Sprintf("%d%%", stats.ConversionRate))

	s.WriteString("\n")
	s.WriteString(stageStyle.Render("Recent Activity"))
	s.WriteString("\n")
	if len(stats.RecentActivity) == 0 {
		s.WriteString(labelStyle.Render("No activity yet"))
		s.WriteString("\n")
	}
	for i, a := range stats.RecentActivity {
		if i == feedInPanel {
			break
		}
		s.WriteString("• " + agent.PlainText(a.Text) + "\n")
	}
	return s.String()
}

func renderContacts(state models.CRMState) string {
	if len(state.Contacts) == 0 {
		return labelStyle.Render("No contacts yet")
	}
	var s strings.Builder
	for _, c := range state.Contacts {
		line := fmt.Sprintf("%-18s %-16s %s", truncate(c.Name, 18), truncate(c.Company, 16), c.Status)
		if agent.ContactKey(c.ID) == state.Highlight {
			line = highlightStyle.Render(line)
		}
		s.WriteString(line + "\n")
	}
	return s.String()
}

func renderDeals(state models.CRMState) string {
	stats := viz.GenerateDashboardStats(state)
	var s strings.Builder
	for _, col := range stats.Board {
		s.WriteString(stageStyle.Render(fmt.Sprintf("%s (%s)", col.Title, viz.FormatMoney(col.Total))))
		s.WriteString("\n")
		if len(col.Deals) == 0 {
			s.WriteString(labelStyle.Render("  -"))
			s.WriteString("\n")
		}
		for _, d := range col.Deals {
			line := fmt.Sprintf("  %-22s %-14s %s", truncate(d.Name, 22), truncate(d.Company, 14), viz.FormatMoney(d.Value))
			if agent.DealKey(d.ID) == state.Highlight {
				line = highlightStyle.Render(line)
			}
			s.WriteString(line + "\n")
		}
	}
	return s.String()
}

func renderContactDetail(c models.Contact) string {
	var s strings.Builder
	s.WriteString(stageStyle.Render(c.Name))
	s.WriteString("\n\n")
	for _, f := range [][2]string{
		{"Company", c.Company},
		{"Email", c.Email},
		{"Phone", c.Phone},
		{"Status", c.Status},
	} {
		s.WriteString(labelStyle.Render(fmt.Sprintf("%-9s", f[0])))
		s.WriteString(f[1])
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Esc to close"))
	return s.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
