package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common inbox workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("inbox_triage").
		Description("Work through the inbox: process new mail, surface urgent items and turn action items into tasks.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Inbox Triage", `Help me triage my inbox. Please:

1. Call inbox.sync, then inbox.process to analyze anything new
2. Read calmbox://inbox/urgent for unread high priority mail
3. Read calmbox://stress to see how loaded the inbox is

Then:
- Summarize the urgent emails in one line each
- For processed emails with action items, suggest which to extract with task.extract
- Mark emails I no longer need to look at with inbox.mark_read once I agree

Keep the answer short. If the stress level is high, say so first.`), nil
		})

	srv.Prompt("stress_check").
		Description("Quick check on how stressful the inbox is and whether to take a break.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Stress Check", `Check my inbox stress using calmbox://stress.

- Tell me the overall level and how many emails are high stress
- If a break is advised, suggest a short one and name the one email worth answering first
- Otherwise list at most three emails I can clear quickly`), nil
		})

	srv.Prompt("task_review").
		Description("Review open tasks and decide what to move forward today.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Task Review", `Review my open tasks from calmbox://tasks/open.

- Point out tasks linked to high priority emails
- Propose which to start (task.update_status to in_progress) and which are done
- Flag tasks without a due date that look time sensitive`), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
