package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/calmbox/internal/productivity/application/commands"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/queries"
	"github.com/felixgeelhaar/mcp-go"
)

type taskCreateInput struct {
	Title       string   `json:"title" jsonschema:"required"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Category    string   `json:"category,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	EmailID     string   `json:"email_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type taskListInput struct {
	Status      string `json:"status,omitempty"`
	EmailID     string `json:"email_id,omitempty"`
	OpenOnly    bool   `json:"open_only,omitempty"`
	Prioritized bool   `json:"prioritized,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

type taskStatusInput struct {
	TaskID string `json:"task_id" jsonschema:"required"`
	Status string `json:"status" jsonschema:"required"`
}

type taskStatusOutput struct {
	Task     queries.TaskDTO `json:"task"`
	Previous string          `json:"previous"`
	Changed  bool            `json:"changed"`
}

type taskExtractOutput struct {
	Created []queries.TaskDTO `json:"created"`
	Skipped []string          `json:"skipped"`
}

func registerTaskTools(srv *mcp.Server, t *toolset) {
	srv.Tool("task.create").
		Description("Create a task, optionally linked to an email").
		Handler(t.createTask)

	srv.Tool("task.list").
		Description("List tasks with filters; prioritized sorts critical first").
		Handler(t.listTasks)

	srv.Tool("task.update_status").
		Description("Move a task to pending, in_progress or complete").
		Handler(t.updateTaskStatus)

	srv.Tool("task.extract").
		Description("Turn the action items of a processed email into tasks").
		Handler(t.extractTasks)
}

func (t *toolset) createTask(ctx context.Context, input taskCreateInput) (*queries.TaskDTO, error) {
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	due, err := parseOptionalDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	result, err := t.app.CreateTaskHandler.Handle(ctx, commands.CreateTaskCommand{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Category:    input.Category,
		DueDate:     due,
		EmailID:     input.EmailID,
		Tags:        input.Tags,
	})
	if err != nil {
		return nil, err
	}
	dto := queries.ToDTO(result.Task)
	return &dto, nil
}

func (t *toolset) listTasks(ctx context.Context, input taskListInput) ([]queries.TaskDTO, error) {
	return t.app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
		Status:      input.Status,
		EmailID:     input.EmailID,
		OpenOnly:    input.OpenOnly,
		Prioritized: input.Prioritized,
		Limit:       input.Limit,
	})
}

func (t *toolset) updateTaskStatus(ctx context.Context, input taskStatusInput) (*taskStatusOutput, error) {
	taskID, err := parseUUID(input.TaskID)
	if err != nil {
		return nil, err
	}

	result, err := t.app.UpdateTaskStatusHandler.Handle(ctx, commands.UpdateTaskStatusCommand{
		TaskID: taskID,
		Status: input.Status,
	})
	if err != nil {
		return nil, err
	}
	return &taskStatusOutput{
		Task:     queries.ToDTO(result.Task),
		Previous: result.Previous.String(),
		Changed:  result.Changed,
	}, nil
}

func (t *toolset) extractTasks(ctx context.Context, input emailIDInput) (*taskExtractOutput, error) {
	if input.EmailID == "" {
		return nil, errors.New("email_id is required")
	}
	result, err := t.app.ExtractTasksHandler.Handle(ctx, commands.ExtractTasksCommand{EmailID: input.EmailID})
	if err != nil {
		return nil, err
	}

	out := &taskExtractOutput{Created: make([]queries.TaskDTO, 0, len(result.Created)), Skipped: result.Skipped}
	for _, created := range result.Created {
		out.Created = append(out.Created, queries.ToDTO(created))
	}
	return out, nil
}
