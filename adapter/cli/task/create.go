package task

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/commands"
	"github.com/spf13/cobra"
)

var (
	priority    string
	description string
	category    string
	dueDate     string
	emailID     string
	tags        []string
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new task",
	Long: `Create a new task with a title and optional properties.

New tasks are pending with medium priority unless told otherwise.

Examples:
  calmbox task create "Reply to Sarah"
  calmbox task create "Join incident bridge" -p critical --email 2
  calmbox task create "Book venue" --due 2024-04-01 --tag social`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		create := commands.CreateTaskCommand{
			Title:       args[0],
			Description: description,
			Priority:    priority,
			Category:    category,
			EmailID:     emailID,
			Tags:        tags,
		}
		if dueDate != "" {
			parsed, err := time.Parse("2006-01-02", dueDate)
			if err != nil {
				return fmt.Errorf("invalid due date format (use YYYY-MM-DD): %w", err)
			}
			create.DueDate = &parsed
		}

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), create)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		t := result.Task
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Task created: %s\n", t.ID())
		fmt.Fprintf(out, "  title: %s\n", t.Title())
		fmt.Fprintf(out, "  priority: %s\n", t.Priority())
		if t.EmailID() != "" {
			fmt.Fprintf(out, "  email: %s\n", t.EmailID())
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&priority, "priority", "p", "", "task priority (low, medium, high, critical)")
	createCmd.Flags().StringVar(&description, "description", "", "task description")
	createCmd.Flags().StringVar(&category, "category", "", "task category")
	createCmd.Flags().StringVar(&dueDate, "due", "", "due date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&emailID, "email", "", "ID of the email this task came from")
	createCmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag, repeatable")
}
