package cli

import (
	"github.com/spf13/cobra"
)

var stressJSON bool

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Show how stressful the inbox is right now",
	Long: `Show the aggregate stress level of the inbox.

The level is HIGH when more than 30% of the emails are high stress and
MEDIUM above 10%. A HIGH inbox comes with a suggestion to take a break.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		stress := app.StatsHandler.Stress(cmd.Context())
		if stressJSON {
			return WriteJSON(cmd.OutOrStdout(), stress)
		}
		PrintStress(cmd.OutOrStdout(), stress)
		return nil
	},
}

func init() {
	stressCmd.Flags().BoolVar(&stressJSON, "json", false, "print JSON")
	rootCmd.AddCommand(stressCmd)
}
