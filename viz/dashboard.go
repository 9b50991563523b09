// ABOUTME: Dashboard statistics and terminal rendering for the CRM demo
// ABOUTME: Derives totals, conversion rate, activity feed and the deal board
package viz

import (
	"fmt"
	"strings"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/models"
)

// FeedLength is how many activity entries the dashboard shows.
const FeedLength = 10

// UnknownCompany labels deals whose contact no longer resolves.
const UnknownCompany = "Unknown"

type DashboardStats struct {
	TotalContacts  int
	ActiveDeals    int
	PipelineValue  int64
	ConversionRate int

	// Newest first.
	RecentActivity []models.Activity

	Board []StageColumn
}

type StageColumn struct {
	Stage string
	Title string
	Deals []DealCard
	Total int64
}

type DealCard struct {
	ID      int64
	Name    string
	Company string
	Value   int64
}

var stageTitles = map[string]string{
	models.StageProspecting: "Prospecting",
	models.StageProposal:    "Proposal",
	models.StageNegotiation: "Negotiation",
	models.StageWon:         "Won",
}

func GenerateDashboardStats(state models.CRMState) *DashboardStats {
	stats := &DashboardStats{
		TotalContacts: len(state.Contacts),
		ActiveDeals:   len(state.Deals),
	}

	won := 0
	for _, d := range state.Deals {
		stats.PipelineValue += d.Value
		if d.Stage == models.StageWon {
			won++
		}
	}
	stats.ConversionRate = ConversionRate(won, stats.TotalContacts)

	start := len(state.Activity) - FeedLength
	if start < 0 {
		start = 0
	}
	for i := len(state.Activity) - 1; i >= start; i-- {
		stats.RecentActivity = append(stats.RecentActivity, state.Activity[i])
	}

	for _, stage := range models.Stages {
		col := StageColumn{Stage: stage, Title: stageTitles[stage]}
		for _, d := range state.Deals {
			if d.Stage != stage {
				continue
			}
			company := UnknownCompany
			if c := state.FindContact(d.ContactID); c != nil {
				company = c.Company
			}
			col.Deals = append(col.Deals, DealCard{ID: d.ID, Name: d.Name, Company: company, Value: d.Value})
			col.Total += d.Value
		}
		stats.Board = append(stats.Board, col)
	}
	return stats
}

// ConversionRate is won deals per contact as a rounded percentage.
func ConversionRate(won, contacts int) int {
	if contacts == 0 {
		return 0
	}
	return (won*200 + contacts) / (contacts * 2)
}

// FormatMoney renders whole currency units with thousands separators.
func FormatMoney(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := fmt.Sprintf("%d", v)
	var out strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	return sign + "$" + out.String()
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  SALESFLOW CRM DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  💼 %d deals  💰 %s pipeline  📈 %d%% conversion\n\n",
		stats.TotalContacts, stats.ActiveDeals, FormatMoney(stats.PipelineValue), stats.ConversionRate))

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.Board)
	out.WriteString("\n")

	out.WriteString("RECENT ACTIVITY\n")
	if len(stats.RecentActivity) == 0 {
		out.WriteString("  No recent activity\n")
	}
	for _, a := range stats.RecentActivity {
		out.WriteString(fmt.Sprintf("  • %s\n", agent.PlainText(a.Text)))
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, board []StageColumn) {
	maxCount := 0
	for _, col := range board {
		if len(col.Deals) > maxCount {
			maxCount = len(col.Deals)
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, col := range board {
		barLength := (len(col.Deals) * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-13s %s  %2d (%s)\n", col.Stage, bar, len(col.Deals), FormatMoney(col.Total)))
	}
}
