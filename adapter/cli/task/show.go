package task

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Long: `Display detailed information about a specific task.

Examples:
  calmbox task show 6f1c2a8e
  calmbox task show 6f1c2a8e-3b4d-4e5f-8a9b-0c1d2e3f4a51`,
	Aliases: []string{"get", "view"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		taskID, err := resolveTaskID(ctx, app, args[0])
		if err != nil {
			return err
		}
		t, err := app.GetTaskHandler.Handle(ctx, queries.GetTaskQuery{TaskID: taskID})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Task: %s\n", t.ID)
		fmt.Fprintf(out, "  Title:       %s\n", t.Title)
		fmt.Fprintf(out, "  Status:      %s\n", t.Status)
		fmt.Fprintf(out, "  Priority:    %s\n", t.Priority)
		if t.Description != "" {
			fmt.Fprintf(out, "  Description: %s\n", t.Description)
		}
		if t.Category != "" {
			fmt.Fprintf(out, "  Category:    %s\n", t.Category)
		}
		if t.DueDate != nil {
			fmt.Fprintf(out, "  Due:         %s\n", t.DueDate.Format("2006-01-02"))
		}
		if t.EmailID != "" {
			fmt.Fprintf(out, "  Email:       %s\n", t.EmailID)
		}
		if len(t.Tags) > 0 {
			fmt.Fprintf(out, "  Tags:        %s\n", strings.Join(t.Tags, ", "))
		}
		fmt.Fprintf(out, "  Created:     %s\n", t.CreatedAt.Format("2006-01-02 15:04"))
		if t.CompletedAt != nil {
			fmt.Fprintf(out, "  Completed:   %s\n", t.CompletedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}
