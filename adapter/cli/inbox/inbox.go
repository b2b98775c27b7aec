package inbox

import "github.com/spf13/cobra"

// Cmd groups all inbox commands.
var Cmd = &cobra.Command{
	Use:   "inbox",
	Short: "Read, triage and process your email",
	Long: `Sync emails from the configured data source, run the analyzer over them
and keep track of what you have read or flagged.

The inbox is saved after every change, so it survives between invocations.`,
}

func init() {
	Cmd.AddCommand(syncCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(processCmd)
	Cmd.AddCommand(readCmd)
	Cmd.AddCommand(flagCmd)
	Cmd.AddCommand(statsCmd)
}
