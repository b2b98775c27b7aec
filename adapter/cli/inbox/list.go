package inbox

import (
	"fmt"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/inbox/application/queries"
	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/spf13/cobra"
)

var (
	unreadOnly  bool
	flaggedOnly bool
	pendingOnly bool
	category    string
	priority    string
	stressLevel string
	limit       int
	listJSON    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List emails",
	Long: `List emails in inbox order, with optional filters.

Examples:
  calmbox inbox list --unread
  calmbox inbox list --stress high
  calmbox inbox list --category work -n 5`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		emails, err := app.ListEmailsHandler.Handle(cmd.Context(), queries.ListEmailsQuery{
			UnreadOnly:  unreadOnly,
			FlaggedOnly: flaggedOnly,
			Pending:     pendingOnly,
			Category:    category,
			Priority:    priority,
			StressLevel: stressLevel,
			Limit:       limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list emails: %w", err)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			return cli.WriteJSON(out, emails)
		}
		if len(emails) == 0 {
			fmt.Fprintln(out, "No emails found.")
			return nil
		}

		fmt.Fprintf(out, "Emails (%d):\n", len(emails))
		cli.Rule(out)
		for _, e := range emails {
			fmt.Fprintf(out, "%s %s %s\n", readMarker(e), cli.LevelBadge(e.StressLevel), cli.Truncate(e.Subject, 50))
			fmt.Fprintf(out, "   ID: %s  From: %s  Priority: %s\n", e.ID, e.Sender.Name, e.Priority)
			if e.Processed && e.Summary != "" {
				fmt.Fprintf(out, "   %s\n", e.Summary)
			}
		}
		return nil
	},
}

func readMarker(e domain.Email) string {
	switch {
	case e.Flagged:
		return "[!]"
	case !e.Read:
		return "[*]"
	default:
		return "[ ]"
	}
}

func init() {
	listCmd.Flags().BoolVarP(&unreadOnly, "unread", "u", false, "only unread emails")
	listCmd.Flags().BoolVar(&flaggedOnly, "flagged", false, "only flagged emails")
	listCmd.Flags().BoolVar(&pendingOnly, "pending", false, "only emails not yet processed")
	listCmd.Flags().StringVar(&category, "category", "", "filter by category")
	listCmd.Flags().StringVarP(&priority, "priority", "p", "", "filter by priority (low, medium, high)")
	listCmd.Flags().StringVarP(&stressLevel, "stress", "s", "", "filter by stress level (low, medium, high)")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "max number of emails (0 = no limit)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")
}
