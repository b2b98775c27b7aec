package datasource

import (
	"time"

	inbox "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
)

var fixtureEpoch = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

// SampleEmails returns the built-in sample inbox: a deadline extension, a
// server outage and a team lunch invitation, with their shipped stress and
// priority levels. None of them is processed yet.
func SampleEmails() []inbox.Email {
	return []inbox.Email{
		{
			ID:      "1",
			Subject: "Project Deadline Extension",
			Body: "Hi team, good news. The client has agreed to extend the project deadline by two weeks. " +
				"Please update your schedules accordingly. Let me know if you have any questions.",
			Sender:      inbox.Sender{Name: "Sarah Johnson", Address: "sarah.johnson@company.com"},
			Timestamp:   fixtureEpoch,
			Priority:    inbox.LevelMedium,
			StressLevel: inbox.LevelLow,
			Category:    "work",
		},
		{
			ID:      "2",
			Subject: "URGENT: Server Outage",
			Body: "URGENT: We are currently experiencing a major outage affecting all production servers. " +
				"Customers in every region are unable to log in, checkout is failing, and the status page " +
				"has been updated to reflect a full service disruption. The on-call engineers have been paged " +
				"and are investigating the root cause, which appears to be related to last night's database " +
				"migration. Please join the incident bridge immediately if you are on the infrastructure, " +
				"database or support rotations. Please do not deploy any changes until the incident commander " +
				"gives the all clear. We will post updates every thirty minutes in the incident channel and " +
				"send a summary to leadership once service has been restored. Thank you for your patience " +
				"and fast response while we work through this critical situation together.",
			Sender:      inbox.Sender{Name: "IT Operations", Address: "it-ops@company.com"},
			Timestamp:   fixtureEpoch.Add(-2 * time.Hour),
			Priority:    inbox.LevelHigh,
			StressLevel: inbox.LevelHigh,
			Category:    "alerts",
		},
		{
			ID:      "3",
			Subject: "Team Lunch Friday",
			Body: "Hey everyone! We are organizing a team lunch this Friday at noon at the Italian place " +
				"around the corner. Please let me know if you have any dietary restrictions. Looking forward to it!",
			Sender:      inbox.Sender{Name: "Mike Chen", Address: "mike.chen@company.com"},
			Timestamp:   fixtureEpoch.Add(-24 * time.Hour),
			Priority:    inbox.LevelLow,
			StressLevel: inbox.LevelLow,
			Category:    "social",
		},
	}
}

// Fixed IDs for the sample tasks.
var (
	sampleTaskReviewID   = uuid.MustParse("6f1c2a8e-3b4d-4e5f-8a9b-0c1d2e3f4a51")
	sampleTaskScheduleID = uuid.MustParse("6f1c2a8e-3b4d-4e5f-8a9b-0c1d2e3f4a52")
	sampleTaskLunchID    = uuid.MustParse("6f1c2a8e-3b4d-4e5f-8a9b-0c1d2e3f4a53")
)

// SampleTasks returns the built-in task list for userID.
func SampleTasks(userID string) []*task.Task {
	due := fixtureEpoch.Add(14 * 24 * time.Hour)
	completed := fixtureEpoch.Add(-time.Hour)

	snapshots := []task.Snapshot{
		{
			ID:          sampleTaskReviewID,
			Title:       "Review quarterly report",
			Description: "Go through the Q1 numbers before the planning meeting",
			Status:      task.StatusInProgress,
			Priority:    value_objects.PriorityHigh,
			Category:    "work",
			Tags:        []string{"planning"},
		},
		{
			ID:       sampleTaskScheduleID,
			Title:    "Update project schedule",
			Status:   task.StatusPending,
			Priority: value_objects.PriorityMedium,
			Category: "work",
			DueDate:  &due,
			EmailID:  "1",
			Tags:     []string{"email"},
		},
		{
			ID:          sampleTaskLunchID,
			Title:       "Reply about lunch",
			Status:      task.StatusComplete,
			Priority:    value_objects.PriorityLow,
			Category:    "social",
			EmailID:     "3",
			Tags:        []string{"email"},
			CompletedAt: &completed,
		},
	}

	tasks := make([]*task.Task, 0, len(snapshots))
	for _, s := range snapshots {
		s.UserID = userID
		s.CreatedAt = fixtureEpoch.Add(-48 * time.Hour)
		s.UpdatedAt = fixtureEpoch.Add(-time.Hour)
		t, err := task.Rehydrate(s)
		if err != nil {
			panic("invalid sample task: " + err.Error())
		}
		tasks = append(tasks, t)
	}
	return tasks
}
