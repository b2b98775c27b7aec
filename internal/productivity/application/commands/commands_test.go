package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/calmbox/internal/datasource"
	inbox "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/calmbox/internal/productivity/store"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockDataSource is a mock implementation of datasource.DataSource.
type mockDataSource struct {
	mock.Mock
}

func (m *mockDataSource) Name() string {
	return "mock"
}

func (m *mockDataSource) FetchEmails(ctx context.Context) (datasource.EmailBatch, error) {
	args := m.Called(ctx)
	return args.Get(0).(datasource.EmailBatch), args.Error(1)
}

func (m *mockDataSource) FetchTasks(ctx context.Context) (datasource.TaskBatch, error) {
	args := m.Called(ctx)
	return args.Get(0).(datasource.TaskBatch), args.Error(1)
}

func (m *mockDataSource) SaveTask(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// recordingPublisher remembers routing keys.
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.keys...)
}

type emailMap map[string]inbox.Email

func (m emailMap) Get(id string) (inbox.Email, bool) {
	e, ok := m[id]
	return e, ok
}

var errBackend = errors.New("backend unavailable")

func TestCreateTaskHandler_Success(t *testing.T) {
	tasks := store.NewTaskStore("local")
	source := new(mockDataSource)
	publisher := &recordingPublisher{}
	metrics := observability.NewInMemoryMetrics()
	handler := NewCreateTaskHandler(tasks, source, publisher, metrics, nil)

	source.On("SaveTask", mock.Anything, mock.AnythingOfType("*task.Task")).Return(nil)

	result, err := handler.Handle(context.Background(), CreateTaskCommand{
		Title:    "  Write report ",
		Priority: "high",
		Tags:     []string{"work"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Write report", result.Task.Title())
	assert.Equal(t, value_objects.PriorityHigh, result.Task.Priority())
	assert.Equal(t, task.StatusPending, result.Task.Status())
	assert.Equal(t, 1, tasks.Len())
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricTasksCreated))
	assert.Equal(t, []string{task.RoutingKeyCreated}, publisher.Keys())
	source.AssertExpectations(t)
}

func TestCreateTaskHandler_SaveFailureAddsNothing(t *testing.T) {
	tasks := store.NewTaskStore("local")
	source := new(mockDataSource)
	publisher := &recordingPublisher{}
	handler := NewCreateTaskHandler(tasks, source, publisher, nil, nil)

	source.On("SaveTask", mock.Anything, mock.Anything).Return(errBackend)

	result, err := handler.Handle(context.Background(), CreateTaskCommand{Title: "Write report"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, 0, tasks.Len())
	assert.Empty(t, publisher.Keys())
}

func TestCreateTaskHandler_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		cmd     CreateTaskCommand
		wantErr error
	}{
		{"empty title", CreateTaskCommand{Title: "   "}, task.ErrEmptyTitle},
		{"bad priority", CreateTaskCommand{Title: "x", Priority: "extreme"}, value_objects.ErrInvalidPriority},
		{"bad status", CreateTaskCommand{Title: "x", Status: "archived"}, task.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(mockDataSource)
			handler := NewCreateTaskHandler(store.NewTaskStore("local"), source, &recordingPublisher{}, nil, nil)

			_, err := handler.Handle(context.Background(), tt.cmd)

			assert.ErrorIs(t, err, tt.wantErr)
			source.AssertNotCalled(t, "SaveTask", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateTaskHandler_PublishFailureDoesNotFail(t *testing.T) {
	tasks := store.NewTaskStore("local")
	source := new(mockDataSource)
	source.On("SaveTask", mock.Anything, mock.Anything).Return(nil)
	handler := NewCreateTaskHandler(tasks, source, &recordingPublisher{err: errBackend}, nil, nil)

	_, err := handler.Handle(context.Background(), CreateTaskCommand{Title: "Write report"})

	require.NoError(t, err)
	assert.Equal(t, 1, tasks.Len())
}

func newStoreWithTask(t *testing.T, status task.Status) (*store.TaskStore, *task.Task) {
	t.Helper()
	tasks := store.NewTaskStore("local")
	created, err := tasks.Create(store.CreateInput{Title: "Review report", Status: status})
	require.NoError(t, err)
	return tasks, created
}

func TestUpdateTaskStatusHandler_Complete(t *testing.T) {
	tasks, created := newStoreWithTask(t, task.StatusPending)
	source := new(mockDataSource)
	publisher := &recordingPublisher{}
	metrics := observability.NewInMemoryMetrics()
	handler := NewUpdateTaskStatusHandler(tasks, source, publisher, metrics, nil)

	source.On("SaveTask", mock.Anything, mock.Anything).Return(nil)

	result, err := handler.Handle(context.Background(), UpdateTaskStatusCommand{
		TaskID: created.ID(),
		Status: "complete",
	})

	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, task.StatusPending, result.Previous)
	assert.Equal(t, task.StatusComplete, result.Task.Status())
	assert.NotNil(t, result.Task.CompletedAt())
	assert.Equal(t, []string{task.RoutingKeyStatusChanged}, publisher.Keys())
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricTaskStatusChanges, observability.T("to", "complete")))

	stored, err := tasks.Get(created.ID())
	require.NoError(t, err)
	assert.True(t, stored.IsComplete())
}

func TestUpdateTaskStatusHandler_SameStatusPublishesNothing(t *testing.T) {
	tasks, created := newStoreWithTask(t, task.StatusComplete)
	source := new(mockDataSource)
	publisher := &recordingPublisher{}
	handler := NewUpdateTaskStatusHandler(tasks, source, publisher, nil, nil)

	source.On("SaveTask", mock.Anything, mock.Anything).Return(nil)

	result, err := handler.Handle(context.Background(), UpdateTaskStatusCommand{
		TaskID: created.ID(),
		Status: "done",
	})

	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, created.CompletedAt(), result.Task.CompletedAt())
	assert.Empty(t, publisher.Keys())
}

func TestUpdateTaskStatusHandler_ReconcilesWithAuthoritativeTasks(t *testing.T) {
	tasks, created := newStoreWithTask(t, task.StatusPending)
	source := new(mockDataSource)
	handler := NewUpdateTaskStatusHandler(tasks, source, &recordingPublisher{}, nil, nil)

	authoritative := datasource.SampleTasks("local")
	source.On("SaveTask", mock.Anything, mock.Anything).Return(errBackend)
	source.On("FetchTasks", mock.Anything).Return(datasource.TaskBatch{
		Tasks:  authoritative,
		Source: datasource.NameLive,
	}, nil)

	result, err := handler.Handle(context.Background(), UpdateTaskStatusCommand{
		TaskID: created.ID(),
		Status: "in_progress",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, len(authoritative), tasks.Len())
	_, err = tasks.Get(created.ID())
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
	source.AssertExpectations(t)
}

func TestUpdateTaskStatusHandler_RestoresPreviousOnFallback(t *testing.T) {
	tasks, created := newStoreWithTask(t, task.StatusPending)
	source := new(mockDataSource)
	publisher := &recordingPublisher{}
	handler := NewUpdateTaskStatusHandler(tasks, source, publisher, nil, nil)

	source.On("SaveTask", mock.Anything, mock.Anything).Return(errBackend)
	source.On("FetchTasks", mock.Anything).Return(datasource.TaskBatch{
		Tasks:  datasource.SampleTasks("local"),
		Source: datasource.NameFixture,
		Notice: &datasource.Notice{Message: datasource.SampleDataMessage, Reason: "down"},
	}, nil)

	_, err := handler.Handle(context.Background(), UpdateTaskStatusCommand{
		TaskID: created.ID(),
		Status: "complete",
	})

	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, 1, tasks.Len())
	stored, err := tasks.Get(created.ID())
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, stored.Status())
	assert.Nil(t, stored.CompletedAt())
	assert.Empty(t, publisher.Keys())
}

func TestUpdateTaskStatusHandler_Errors(t *testing.T) {
	tasks, created := newStoreWithTask(t, task.StatusPending)
	source := new(mockDataSource)
	handler := NewUpdateTaskStatusHandler(tasks, source, &recordingPublisher{}, nil, nil)

	_, err := handler.Handle(context.Background(), UpdateTaskStatusCommand{TaskID: created.ID(), Status: "later"})
	assert.ErrorIs(t, err, task.ErrInvalidStatus)

	_, err = handler.Handle(context.Background(), UpdateTaskStatusCommand{
		TaskID: datasource.SampleTasks("local")[0].ID(),
		Status: "complete",
	})
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
	source.AssertNotCalled(t, "SaveTask", mock.Anything, mock.Anything)
}

func processedEmail() inbox.Email {
	return inbox.Email{
		ID:          "2",
		Subject:     "URGENT: Server Outage",
		Priority:    inbox.LevelHigh,
		StressLevel: inbox.LevelHigh,
		Category:    "alerts",
		Processed:   true,
		ActionItems: []inbox.ActionItem{
			{ID: "a1", Description: "Please restart the cache nodes."},
			{ID: "a2", Description: "Please confirm on the status page."},
			{ID: "a3", Description: "Already handled", Completed: true},
		},
	}
}

func TestExtractTasksHandler_CreatesOncePerActionItem(t *testing.T) {
	tasks := store.NewTaskStore("local")
	source := new(mockDataSource)
	publisher := &recordingPublisher{}
	metrics := observability.NewInMemoryMetrics()
	emails := emailMap{"2": processedEmail()}
	handler := NewExtractTasksHandler(emails, tasks, source, publisher, metrics, nil)

	source.On("SaveTask", mock.Anything, mock.Anything).Return(nil)

	first, err := handler.Handle(context.Background(), ExtractTasksCommand{EmailID: "2"})
	require.NoError(t, err)
	require.Len(t, first.Created, 2)
	assert.Empty(t, first.Skipped)

	created := first.Created[0]
	assert.Equal(t, "Please restart the cache nodes.", created.Title())
	assert.Equal(t, "URGENT: Server Outage", created.Description())
	assert.Equal(t, value_objects.PriorityHigh, created.Priority())
	assert.Equal(t, "alerts", created.Category())
	assert.Equal(t, "2", created.EmailID())
	assert.True(t, created.HasTag(ExtractedTaskTag))

	second, err := handler.Handle(context.Background(), ExtractTasksCommand{EmailID: "2"})
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Len(t, second.Skipped, 2)

	assert.Equal(t, 2, tasks.Len())
	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricTasksCreated, observability.T("origin", "email")))
	assert.Equal(t, []string{task.RoutingKeyCreated, task.RoutingKeyCreated}, publisher.Keys())
	source.AssertNumberOfCalls(t, "SaveTask", 2)
}

func TestExtractTasksHandler_Errors(t *testing.T) {
	unprocessed := processedEmail()
	unprocessed.Processed = false
	emails := emailMap{"2": unprocessed}
	source := new(mockDataSource)
	handler := NewExtractTasksHandler(emails, store.NewTaskStore("local"), source, &recordingPublisher{}, nil, nil)

	_, err := handler.Handle(context.Background(), ExtractTasksCommand{EmailID: "2"})
	assert.ErrorIs(t, err, ErrEmailNotProcessed)

	_, err = handler.Handle(context.Background(), ExtractTasksCommand{EmailID: "404"})
	assert.ErrorIs(t, err, inbox.ErrEmailNotFound)
}

func TestExtractTasksHandler_SaveFailureStops(t *testing.T) {
	tasks := store.NewTaskStore("local")
	source := new(mockDataSource)
	handler := NewExtractTasksHandler(emailMap{"2": processedEmail()}, tasks, source, &recordingPublisher{}, nil, nil)

	source.On("SaveTask", mock.Anything, mock.Anything).Return(errBackend).Once()

	result, err := handler.Handle(context.Background(), ExtractTasksCommand{EmailID: "2"})

	assert.ErrorIs(t, err, errBackend)
	assert.Empty(t, result.Created)
	assert.Equal(t, 0, tasks.Len())
}

func TestExtractTasksHandler_ConcurrentCallsCreateOnce(t *testing.T) {
	tasks := store.NewTaskStore("local")
	source := new(mockDataSource)
	handler := NewExtractTasksHandler(emailMap{"2": processedEmail()}, tasks, source, &recordingPublisher{}, nil, nil)

	source.On("SaveTask", mock.Anything, mock.Anything).Return(nil).After(20 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := handler.Handle(context.Background(), ExtractTasksCommand{EmailID: "2"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, tasks.Len())
	assert.True(t, tasks.HasEmailTask("2", "Please restart the cache nodes."))
	source.AssertNumberOfCalls(t, "SaveTask", 2)
}

func TestHandlers_NilPublisher(t *testing.T) {
	tasks := store.NewTaskStore("local")
	source := new(mockDataSource)
	source.On("SaveTask", mock.Anything, mock.Anything).Return(nil)

	create := NewCreateTaskHandler(tasks, source, nil, nil, nil)
	created, err := create.Handle(context.Background(), CreateTaskCommand{Title: "Write report"})
	require.NoError(t, err)
	assert.Equal(t, "Write report", created.Task.Title())

	extract := NewExtractTasksHandler(emailMap{"2": processedEmail()}, tasks, source, nil, nil, nil)
	result, err := extract.Handle(context.Background(), ExtractTasksCommand{EmailID: "2"})
	require.NoError(t, err)
	assert.Len(t, result.Created, 2)
	assert.Equal(t, 3, tasks.Len())
}

func TestPriorityFor(t *testing.T) {
	assert.Equal(t, value_objects.PriorityHigh, priorityFor(inbox.LevelHigh))
	assert.Equal(t, value_objects.PriorityMedium, priorityFor(inbox.LevelMedium))
	assert.Equal(t, value_objects.PriorityLow, priorityFor(inbox.LevelLow))
	assert.Equal(t, value_objects.PriorityMedium, priorityFor(""))
}

func TestSyncTasksHandler(t *testing.T) {
	tasks := store.NewTaskStore("local")
	source := datasource.NewFixtureDataSource("local")
	handler := NewSyncTasksHandler(tasks, source, nil)

	result, err := handler.Handle(context.Background(), SyncTasksCommand{})

	require.NoError(t, err)
	assert.Equal(t, datasource.NameFixture, result.Source)
	assert.Equal(t, 3, result.Count)
	assert.Nil(t, result.Notice)
	assert.Equal(t, 3, tasks.Len())
}

func TestSyncTasksHandler_Error(t *testing.T) {
	tasks, _ := newStoreWithTask(t, task.StatusPending)
	source := new(mockDataSource)
	source.On("FetchTasks", mock.Anything).Return(datasource.TaskBatch{}, errBackend)
	handler := NewSyncTasksHandler(tasks, source, nil)

	_, err := handler.Handle(context.Background(), SyncTasksCommand{})

	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, 1, tasks.Len())
}
