package inbox

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/inbox/application/queries"
	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one email with its analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		email, err := app.GetEmailHandler.Handle(cmd.Context(), queries.GetEmailQuery{EmailID: args[0]})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if showJSON {
			return cli.WriteJSON(out, email)
		}

		fmt.Fprintln(out, email.Subject)
		cli.Rule(out)
		fmt.Fprintf(out, "From:      %s\n", email.Sender)
		fmt.Fprintf(out, "Date:      %s\n", email.Timestamp.Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "Category:  %s\n", email.Category)
		fmt.Fprintf(out, "Priority:  %s\n", strings.ToUpper(email.Priority.String()))
		fmt.Fprintf(out, "Stress:    %s\n", strings.ToUpper(email.StressLevel.String()))
		if email.Processed {
			fmt.Fprintf(out, "Sentiment: %+g\n", email.SentimentScore)
			fmt.Fprintf(out, "Summary:   %s\n", email.Summary)
		} else {
			fmt.Fprintln(out, "Not processed yet. Run: calmbox inbox process "+email.ID)
		}
		if len(email.ActionItems) > 0 {
			fmt.Fprintln(out, "Action items:")
			for _, item := range email.ActionItems {
				check := " "
				if item.Completed {
					check = "x"
				}
				fmt.Fprintf(out, "  [%s] %s\n", check, item.Description)
			}
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, email.Body)
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print JSON")
}
