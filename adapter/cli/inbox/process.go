package inbox

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/inbox/application/commands"
	"github.com/spf13/cobra"
)

var quiet bool

var processCmd = &cobra.Command{
	Use:   "process [id...]",
	Short: "Analyze emails",
	Long: `Run the analyzer over the given emails, or over every unprocessed email
when no ID is given. Emails are handled one at a time and progress is
reported after each one.

Examples:
  calmbox inbox process
  calmbox inbox process 2 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		progress := func(fraction float64) {
			if !quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "  processing... %3.0f%%\n", fraction*100)
			}
		}

		ctx := cmd.Context()
		result, err := app.ProcessEmailsHandler.Handle(ctx, commands.ProcessEmailsCommand{
			IDs:      args,
			Progress: progress,
		})
		if result != nil {
			// Keep whatever was analyzed before an interruption.
			if saveErr := app.SaveSession(context.WithoutCancel(ctx), ""); saveErr != nil && err == nil {
				err = saveErr
			}
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		report := result.Report
		fmt.Fprintf(out, "Processed %d emails\n", len(report.Processed))
		printIDs(out, "skipped (already processed)", report.Skipped)
		printIDs(out, "failed (analysis fell back, will retry)", report.Failed)
		printIDs(out, "not found", report.Missing)
		cli.PrintStress(out, result.Stress)
		return nil
	},
}

func printIDs(out io.Writer, label string, ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(out, "  %s: %s\n", label, strings.Join(ids, ", "))
}

func init() {
	processCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not report progress")
}
