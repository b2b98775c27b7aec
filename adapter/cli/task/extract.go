package task

import (
	"fmt"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/commands"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [email-id]",
	Short: "Turn an email's action items into tasks",
	Long: `Create one task per open action item of a processed email.

Running it twice does not create duplicates.

Examples:
  calmbox inbox process 2
  calmbox task extract 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		result, err := app.ExtractTasksHandler.Handle(cmd.Context(), commands.ExtractTasksCommand{EmailID: args[0]})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(result.Created) == 0 && len(result.Skipped) == 0 {
			fmt.Fprintf(out, "Email %s has no action items.\n", args[0])
			return nil
		}
		for _, t := range result.Created {
			fmt.Fprintf(out, "Created %s %s %s\n", shortID(t.ID()), t.Title(), priorityBadge(t.Priority().String()))
		}
		for _, title := range result.Skipped {
			fmt.Fprintf(out, "Already a task: %s\n", title)
		}
		return nil
	},
}
