package task

import (
	"fmt"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

var (
	showAll     bool
	status      string
	filterEmail string
	byPriority  bool
	limit       int
	listJSON    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List open tasks, most important first.

Examples:
  calmbox task list                   # Open tasks by priority
  calmbox task list --all             # Everything, including completed
  calmbox task list --status deferred
  calmbox task list --email 2         # Tasks taken from email 2
  calmbox task list -n 3              # Top 3`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		query := queries.ListTasksQuery{
			Status:      status,
			EmailID:     filterEmail,
			OpenOnly:    !showAll && status == "",
			Prioritized: byPriority,
			Limit:       limit,
		}

		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			return cli.WriteJSON(out, tasks)
		}
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		fmt.Fprintf(out, "Tasks (%d):\n", len(tasks))
		cli.Rule(out)
		for _, t := range tasks {
			fmt.Fprintf(out, "%s %s %s\n", statusIcon(t.Status), t.Title, priorityBadge(t.Priority))
			fmt.Fprintf(out, "   ID: %s", shortID(t.ID))
			if t.EmailID != "" {
				fmt.Fprintf(out, "  Email: %s", t.EmailID)
			}
			if t.DueDate != nil {
				fmt.Fprintf(out, "  Due: %s", t.DueDate.Format("2006-01-02"))
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&showAll, "all", "a", false, "show all tasks including completed")
	listCmd.Flags().StringVarP(&status, "status", "s", "", "filter by status (pending, in_progress, complete, deferred)")
	listCmd.Flags().StringVar(&filterEmail, "email", "", "only tasks linked to this email")
	listCmd.Flags().BoolVar(&byPriority, "by-priority", true, "order by priority instead of creation")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "max number of tasks to show (0 = no limit)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")
}
