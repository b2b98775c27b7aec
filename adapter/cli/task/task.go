package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Create, list and update tasks, or pull them out of an email's action items.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(extractCmd)
}

// resolveTaskID accepts a full ID or a unique prefix of one.
func resolveTaskID(ctx context.Context, app *cli.App, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	if len(ref) < 4 {
		return uuid.Nil, fmt.Errorf("task ID prefix %q is too short", ref)
	}

	tasks, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{Status: "all"})
	if err != nil {
		return uuid.Nil, err
	}

	var matches []uuid.UUID
	for _, t := range tasks {
		if strings.HasPrefix(t.ID.String(), strings.ToLower(ref)) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("no task matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return uuid.Nil, fmt.Errorf("%q matches %d tasks, use more characters", ref, len(matches))
	}
}

func statusIcon(status string) string {
	switch status {
	case "complete":
		return "[x]"
	case "in_progress":
		return "[>]"
	case "deferred":
		return "[-]"
	default:
		return "[ ]"
	}
}

func priorityBadge(priority string) string {
	switch priority {
	case "critical":
		return "(!!!)"
	case "high":
		return "(!)"
	case "medium":
		return "(~)"
	case "low":
		return "(.)"
	default:
		return ""
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
