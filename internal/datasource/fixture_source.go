package datasource

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/google/uuid"
)

// FixtureDataSource serves the sample inbox and keeps task changes in memory.
type FixtureDataSource struct {
	mu    sync.Mutex
	tasks []*task.Task
	index map[uuid.UUID]int
}

// NewFixtureDataSource creates a fixture source whose tasks belong to userID.
func NewFixtureDataSource(userID string) *FixtureDataSource {
	f := &FixtureDataSource{index: make(map[uuid.UUID]int)}
	for _, t := range SampleTasks(userID) {
		f.index[t.ID()] = len(f.tasks)
		f.tasks = append(f.tasks, t)
	}
	return f
}

// Name implements DataSource.
func (f *FixtureDataSource) Name() string { return NameFixture }

// FetchEmails returns a fresh copy of the sample inbox.
func (f *FixtureDataSource) FetchEmails(ctx context.Context) (EmailBatch, error) {
	return EmailBatch{Emails: SampleEmails(), Source: NameFixture}, nil
}

// FetchTasks returns the current task list.
func (f *FixtureDataSource) FetchTasks(ctx context.Context) (TaskBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tasks := make([]*task.Task, len(f.tasks))
	for i, t := range f.tasks {
		tasks[i] = t.Clone()
	}
	return TaskBatch{Tasks: tasks, Source: NameFixture}, nil
}

// SaveTask upserts t in memory.
func (f *FixtureDataSource) SaveTask(ctx context.Context, t *task.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if i, ok := f.index[t.ID()]; ok {
		f.tasks[i] = t.Clone()
		return nil
	}
	f.index[t.ID()] = len(f.tasks)
	f.tasks = append(f.tasks, t.Clone())
	return nil
}
