package cli

import (
	"fmt"
	"io"
	"strings"

	inboxQueries "github.com/felixgeelhaar/calmbox/internal/inbox/application/queries"
	"github.com/spf13/cobra"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text|-]",
	Short: "Score a piece of text without adding it to the inbox",
	Long: `Run the heuristic analyzer over arbitrary text.

With no argument or "-" the text is read from stdin.

Examples:
  calmbox analyze "URGENT: please send the report asap"
  pbpaste | calmbox analyze -`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		text, err := analyzeInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		analysis, err := app.AnalyzeTextHandler.Handle(cmd.Context(), inboxQueries.AnalyzeTextQuery{Text: text})
		if err != nil {
			return err
		}
		if analyzeJSON {
			return WriteJSON(cmd.OutOrStdout(), analysis)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Stress:    %s\n", strings.ToUpper(analysis.StressLevel.String()))
		fmt.Fprintf(out, "Priority:  %s\n", strings.ToUpper(analysis.Priority.String()))
		fmt.Fprintf(out, "Sentiment: %+g\n", analysis.SentimentScore)
		if analysis.Summary != "" {
			fmt.Fprintf(out, "Summary:   %s\n", analysis.Summary)
		}
		if len(analysis.ActionItems) > 0 {
			fmt.Fprintln(out, "Action items:")
			for _, item := range analysis.ActionItems {
				fmt.Fprintf(out, "  - %s\n", item.Description)
			}
		}
		return nil
	},
}

func analyzeInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print JSON")
	rootCmd.AddCommand(analyzeCmd)
}
