package inbox

import (
	"fmt"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/inbox/application/commands"
	"github.com/spf13/cobra"
)

var replace bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch emails from the data source",
	Long: `Fetch emails from the configured data source and merge them into the inbox.

Emails that were already analyzed keep their analysis and read state. With
--replace, emails the source no longer returns are dropped from the inbox.

If the live source cannot be reached the sample inbox is used instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := app.SyncInboxHandler.Handle(ctx, commands.SyncInboxCommand{Replace: replace})
		if err != nil {
			return err
		}
		if err := app.SaveSession(ctx, result.Source); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if result.Notice != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "note: %s\n", result.Notice.Message)
		}
		fmt.Fprintf(out, "Synced %d emails from %s (%d new, %d updated)\n",
			result.Fetched, result.Source, result.Added, result.Updated)
		cli.PrintStress(out, result.Stress)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&replace, "replace", false, "drop the current inbox before syncing")
}
