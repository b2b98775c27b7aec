// Package task models the to-do items a user keeps next to the inbox.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
)

// Task represents a unit of work to be done.
//
// completedAt is set exactly when the status is StatusComplete.
type Task struct {
	id          uuid.UUID
	userID      string
	title       string
	description string
	status      Status
	priority    value_objects.Priority
	category    string
	dueDate     *time.Time
	emailID     string
	tags        []string
	createdAt   time.Time
	updatedAt   time.Time
	completedAt *time.Time
}

// NewTask creates a pending task with the given title.
func NewTask(userID, title string, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	now = now.UTC()
	return &Task{
		id:        uuid.New(),
		userID:    userID,
		title:     title,
		status:    StatusPending,
		priority:  value_objects.PriorityMedium,
		tags:      []string{},
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Getters

func (t *Task) ID() uuid.UUID                    { return t.id }
func (t *Task) UserID() string                   { return t.userID }
func (t *Task) Title() string                    { return t.title }
func (t *Task) Description() string              { return t.description }
func (t *Task) Status() Status                   { return t.status }
func (t *Task) Priority() value_objects.Priority { return t.priority }
func (t *Task) Category() string                 { return t.category }
func (t *Task) DueDate() *time.Time              { return copyTime(t.dueDate) }
func (t *Task) EmailID() string                  { return t.emailID }
func (t *Task) Tags() []string                   { return append([]string{}, t.tags...) }
func (t *Task) CreatedAt() time.Time             { return t.createdAt }
func (t *Task) UpdatedAt() time.Time             { return t.updatedAt }
func (t *Task) CompletedAt() *time.Time          { return copyTime(t.completedAt) }
func (t *Task) IsComplete() bool                 { return t.status == StatusComplete }

// SetDescription updates the task description.
func (t *Task) SetDescription(description string) {
	t.description = strings.TrimSpace(description)
}

// SetPriority updates the task priority. PriorityNone is rejected.
func (t *Task) SetPriority(priority value_objects.Priority) error {
	if !priority.IsValid() {
		return fmt.Errorf("%w: %s", value_objects.ErrInvalidPriority, priority)
	}
	t.priority = priority
	return nil
}

// SetCategory updates the free-form category tag.
func (t *Task) SetCategory(category string) {
	t.category = strings.TrimSpace(category)
}

// SetDueDate updates the due date; nil clears it.
func (t *Task) SetDueDate(dueDate *time.Time) {
	t.dueDate = copyTime(dueDate)
}

// LinkEmail records the email the task came from.
func (t *Task) LinkEmail(emailID string) {
	t.emailID = emailID
}

// AddTags adds tags to the set, ignoring blanks and duplicates.
func (t *Task) AddTags(tags ...string) {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || t.HasTag(tag) {
			continue
		}
		t.tags = append(t.tags, tag)
	}
}

// HasTag reports whether tag is in the set.
func (t *Task) HasTag(tag string) bool {
	for _, existing := range t.tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// SetStatus moves the task to status. Entering StatusComplete stamps
// completedAt unless it is already set; leaving it clears the stamp. It
// reports whether the status changed.
func (t *Task) SetStatus(status Status, now time.Time) (bool, error) {
	if !status.IsValid() {
		return false, fmt.Errorf("%w: %d", ErrInvalidStatus, int(status))
	}

	changed := t.status != status
	t.status = status

	if status == StatusComplete {
		if t.completedAt == nil {
			stamp := now.UTC()
			t.completedAt = &stamp
		}
	} else {
		t.completedAt = nil
	}

	if changed {
		t.updatedAt = now.UTC()
	}
	return changed, nil
}

// Clone returns a deep copy.
func (t *Task) Clone() *Task {
	c := *t
	c.dueDate = copyTime(t.dueDate)
	c.completedAt = copyTime(t.completedAt)
	c.tags = append([]string{}, t.tags...)
	return &c
}

// Snapshot is the flat form of a task used by persistence and fixtures.
type Snapshot struct {
	ID          uuid.UUID
	UserID      string
	Title       string
	Description string
	Status      Status
	Priority    value_objects.Priority
	Category    string
	DueDate     *time.Time
	EmailID     string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// Rehydrate rebuilds a task from stored state. The completion stamp is
// normalized so it is present exactly for complete tasks.
func Rehydrate(s Snapshot) (*Task, error) {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s.Status))
	}
	if s.ID == uuid.Nil {
		return nil, fmt.Errorf("task id is required")
	}

	t := &Task{
		id:          s.ID,
		userID:      s.UserID,
		title:       title,
		description: s.Description,
		status:      s.Status,
		priority:    s.Priority,
		category:    s.Category,
		dueDate:     copyTime(s.DueDate),
		emailID:     s.EmailID,
		tags:        []string{},
		createdAt:   s.CreatedAt.UTC(),
		updatedAt:   s.UpdatedAt.UTC(),
		completedAt: copyTime(s.CompletedAt),
	}
	if !t.priority.IsValid() {
		t.priority = value_objects.PriorityMedium
	}
	t.AddTags(s.Tags...)

	switch {
	case t.status == StatusComplete && t.completedAt == nil:
		stamp := t.updatedAt
		t.completedAt = &stamp
	case t.status != StatusComplete:
		t.completedAt = nil
	}

	return t, nil
}

// Snapshot flattens the task.
func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		ID:          t.id,
		UserID:      t.userID,
		Title:       t.title,
		Description: t.description,
		Status:      t.status,
		Priority:    t.priority,
		Category:    t.category,
		DueDate:     copyTime(t.dueDate),
		EmailID:     t.emailID,
		Tags:        t.Tags(),
		CreatedAt:   t.createdAt,
		UpdatedAt:   t.updatedAt,
		CompletedAt: copyTime(t.completedAt),
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
