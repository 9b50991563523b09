// ABOUTME: CRM CLI commands
// ABOUTME: Lists and edits demo records the same way the assistant does
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/db"
	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/session"
	"github.com/harperreed/salesflow/viz"
)

var crmCmd = &cobra.Command{
	Use:   "crm",
	Short: "Inspect and edit the demo CRM records",
}

var crmListCmd = &cobra.Command{
	Use:       "list [contacts|deals|activity]",
	Short:     "List contacts, deals or recent activity",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"contacts", "deals", "activity"},
	RunE: func(cmd *cobra.Command, args []string) error {
		what := "contacts"
		if len(args) == 1 {
			what = args[0]
		}
		return withDatabase(func(database *sql.DB) error {
			out := cmd.OutOrStdout()
			switch what {
			case "deals":
				stage, _ := cmd.Flags().GetString("stage")
				return listDeals(out, database, stage)
			case "activity":
				limit, _ := cmd.Flags().GetInt("limit")
				return listActivity(out, database, limit)
			default:
				return listContacts(out, database)
			}
		})
	},
}

var (
	contactForm session.ContactForm
	dealForm    session.DealForm
)

var crmAddContactCmd = &cobra.Command{
	Use:   "add-contact",
	Short: "Add a contact",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCRMSession(func(s *session.CRMSession) error {
			contact, err := s.AddContact(contactForm, agent.Discard)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Contact created: %s (ID: %d)\n", contact.Name, contact.ID)
			fmt.Fprintf(out, "  Company: %s\n", contact.Company)
			fmt.Fprintf(out, "  Email: %s\n", contact.Email)
			if contact.Phone != "" {
				fmt.Fprintf(out, "  Phone: %s\n", contact.Phone)
			}
			fmt.Fprintf(out, "  Status: %s\n", contact.Status)
			return nil
		})
	},
}

var crmAddDealCmd = &cobra.Command{
	Use:   "add-deal",
	Short: "Add a deal for a contact",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCRMSession(func(s *session.CRMSession) error {
			deal, err := s.AddDeal(dealForm, agent.Discard)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Deal created: %s (ID: %d)\n", deal.Name, deal.ID)
			fmt.Fprintf(out, "  Value: %s\n", viz.FormatMoney(deal.Value))
			fmt.Fprintf(out, "  Stage: %s\n", deal.Stage)
			return nil
		})
	},
}

var crmMoveDealCmd = &cobra.Command{
	Use:   "move-deal <deal-id> <stage>",
	Short: "Move a deal to another pipeline stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid deal ID: %w", err)
		}
		stage := args[1]
		if !models.IsValidStage(stage) {
			return fmt.Errorf("invalid stage %q", stage)
		}
		return withCRMSession(func(s *session.CRMSession) error {
			snap := s.Snapshot()
			deal := snap.FindDeal(id)
			if deal == nil {
				return fmt.Errorf("deal not found: %d", id)
			}
			if err := s.Perform(context.Background(), agent.Discard, agent.MoveDeal{DealID: id, Stage: stage}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Moved %s to %s\n", deal.Name, stage)
			return nil
		})
	},
}

var crmResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all contacts, deals and activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCRMSession(func(s *session.CRMSession) error {
			s.Reset(agent.Discard)
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Demo data cleared")
			return nil
		})
	},
}

var crmSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all records with the demo data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(database *sql.DB) error {
			state, err := db.SeedState(time.Now())
			if err != nil {
				return err
			}
			if err := db.SaveCRMState(database, state); err != nil {
				return fmt.Errorf("failed to seed database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded %d contacts and %d deals\n", len(state.Contacts), len(state.Deals))
			return nil
		})
	},
}

func listContacts(out io.Writer, database *sql.DB) error {
	contacts, err := db.ListContacts(database)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}
	if len(contacts) == 0 {
		fmt.Fprintln(out, "No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tEMAIL\tPHONE\tSTATUS")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t-----\t-----\t------")
	for _, c := range contacts {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Company, c.Email, dash(c.Phone), c.Status)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

func listDeals(out io.Writer, database *sql.DB, stage string) error {
	if stage != "" && !models.IsValidStage(stage) {
		return fmt.Errorf("invalid stage %q", stage)
	}
	deals, err := db.ListDeals(database, stage)
	if err != nil {
		return fmt.Errorf("failed to list deals: %w", err)
	}
	if len(deals) == 0 {
		fmt.Fprintln(out, "No deals found")
		return nil
	}
	contacts, err := db.ListContacts(database)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	lookup := models.CRMState{Contacts: contacts}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCONTACT\tVALUE\tSTAGE")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t-----\t-----")
	for _, d := range deals {
		contact := "-"
		if c := lookup.FindContact(d.ContactID); c != nil {
			contact = c.Name
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.Name, contact, viz.FormatMoney(d.Value), d.Stage)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nTotal: %d deal(s)\n", len(deals))
	return nil
}

func listActivity(out io.Writer, database *sql.DB, limit int) error {
	entries, err := db.ListActivity(database, limit)
	if err != nil {
		return fmt.Errorf("failed to list activity: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No activity yet")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %s\n", e.CreatedAt.Local().Format("Jan 2 15:04"), agent.PlainText(e.Text))
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func withDatabase(fn func(*sql.DB) error) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(database)
}

func withCRMSession(fn func(*session.CRMSession) error) error {
	return withDatabase(func(database *sql.DB) error {
		s, err := newCRMSession(database, newGateway())
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(s)
	})
}

func init() {
	crmListCmd.Flags().String("stage", "", "filter deals by stage")
	crmListCmd.Flags().Int("limit", 10, "maximum activity entries")

	f := crmAddContactCmd.Flags()
	f.StringVar(&contactForm.Name, "name", "", "contact name (required)")
	f.StringVar(&contactForm.Company, "company", "", "company name (required)")
	f.StringVar(&contactForm.Email, "email", "", "email address (required)")
	f.StringVar(&contactForm.Phone, "phone", "", "phone number")
	f.StringVar(&contactForm.Status, "status", "", "lead, prospect or customer (default lead)")

	f = crmAddDealCmd.Flags()
	f.StringVar(&dealForm.Name, "name", "", "deal name (required)")
	f.Int64Var(&dealForm.ContactID, "contact", 0, "contact ID (required)")
	f.Int64Var(&dealForm.Value, "value", 0, "deal value in whole dollars")
	f.StringVar(&dealForm.Stage, "stage", "", "pipeline stage (default prospecting)")

	crmCmd.AddCommand(crmListCmd, crmAddContactCmd, crmAddDealCmd, crmMoveDealCmd, crmResetCmd, crmSeedCmd)
	rootCmd.AddCommand(crmCmd)
}
