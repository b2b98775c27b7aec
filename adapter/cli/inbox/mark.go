package inbox

import (
	"fmt"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/inbox/application/commands"
	"github.com/spf13/cobra"
)

var unflag bool

var readCmd = &cobra.Command{
	Use:   "read [id...]",
	Short: "Mark emails as read",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		for _, id := range args {
			result, err := app.MarkEmailHandler.MarkRead(ctx, commands.MarkReadCommand{EmailID: id})
			if err != nil {
				return err
			}
			if result.Found {
				fmt.Fprintf(out, "Marked %s as read\n", id)
			} else {
				fmt.Fprintf(out, "No email %s, nothing to do\n", id)
			}
		}
		return app.SaveSession(ctx, "")
	},
}

var flagCmd = &cobra.Command{
	Use:   "flag [id]",
	Short: "Flag an email for follow-up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := app.MarkEmailHandler.Flag(ctx, commands.FlagEmailCommand{EmailID: args[0], Unflag: unflag})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case !result.Found:
			fmt.Fprintf(out, "No email %s, nothing to do\n", args[0])
		case unflag:
			fmt.Fprintf(out, "Unflagged %s\n", args[0])
		default:
			fmt.Fprintf(out, "Flagged %s\n", args[0])
		}
		return app.SaveSession(ctx, "")
	},
}

func init() {
	flagCmd.Flags().BoolVar(&unflag, "unflag", false, "remove the flag instead")
}
