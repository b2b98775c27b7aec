package task

import (
	"fmt"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/commands"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [task-id] [status]",
	Short: "Move a task to another status",
	Long: `Set the status of a task: pending, in_progress, complete or deferred.

Any status may follow any other. Completing a task records when it was
completed; moving it out of complete clears that time.

Examples:
  calmbox task status 6f1c2a8e complete
  calmbox task status 6f1c2a8e in_progress`,
	Args: cobra.ExactArgs(2),
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

		result, err := app.UpdateTaskStatusHandler.Handle(ctx, commands.UpdateTaskStatusCommand{
			TaskID: taskID,
			Status: args[1],
		})
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		out := cmd.OutOrStdout()
		if !result.Changed {
			fmt.Fprintf(out, "%s is already %s\n", result.Task.Title(), result.Task.Status())
			return nil
		}
		fmt.Fprintf(out, "%s %s: %s -> %s\n", statusIcon(result.Task.Status().String()),
			result.Task.Title(), result.Previous, result.Task.Status())
		return nil
	},
}
