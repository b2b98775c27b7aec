package inbox

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the inbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		view := app.StatsHandler.Stats(cmd.Context())
		out := cmd.OutOrStdout()
		if statsJSON {
			return cli.WriteJSON(out, view)
		}

		s := view.Stats
		fmt.Fprintf(out, "Inbox: %d emails, %d unread, %d flagged, %d processed\n",
			s.Total, s.Unread, s.Flagged, s.Processed)
		fmt.Fprintf(out, "Overall priority: %s\n", strings.ToUpper(s.OverallPriority.String()))
		cli.PrintStress(out, view.Stress)

		fmt.Fprintln(out)
		fmt.Fprintf(out, "By priority: high %d, medium %d, low %d\n",
			s.ByPriority[domain.LevelHigh], s.ByPriority[domain.LevelMedium], s.ByPriority[domain.LevelLow])
		if len(s.ByCategory) > 0 {
			fmt.Fprintf(out, "By category: %s\n", formatCounts(s.ByCategory))
		}

		printEmails(out, "Urgent and unread", s.UrgentUnread)
		printEmails(out, "Action required", s.ActionRequired)
		return nil
	},
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}

func printEmails(out io.Writer, title string, emails []domain.Email) {
	if len(emails) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", title)
	for _, e := range emails {
		fmt.Fprintf(out, "  %s %s  %s\n", e.ID, cli.LevelBadge(e.Priority), cli.Truncate(e.Subject, 50))
	}
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print JSON")
}
