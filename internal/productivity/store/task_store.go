// Package store holds the in-memory task list of a session.
package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
)

// CreateInput describes a new task. Zero values take the defaults:
// pending status and medium priority.
type CreateInput struct {
	Title       string
	Description string
	Status      task.Status
	Priority    value_objects.Priority
	Category    string
	DueDate     *time.Time
	EmailID     string
	Tags        []string
}

// TaskStore is the ordered, ID-keyed task collection of one user. Every
// method is atomic and hands out copies.
type TaskStore struct {
	mu     sync.RWMutex
	userID string
	tasks  []*task.Task
	index  map[uuid.UUID]int
	now    func() time.Time
}

// Option configures a TaskStore.
type Option func(*TaskStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) { s.now = now }
}

// NewTaskStore creates an empty store owned by userID.
func NewTaskStore(userID string, opts ...Option) *TaskStore {
	s := &TaskStore{
		userID: userID,
		index:  make(map[uuid.UUID]int),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserID returns the owner of the store.
func (s *TaskStore) UserID() string {
	return s.userID
}

// Create adds a task with a fresh ID and creation time.
func (s *TaskStore) Create(input CreateInput) (*task.Task, error) {
	t, err := s.Build(input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.index[t.ID()] = len(s.tasks)
	s.tasks = append(s.tasks, t)
	return t.Clone(), nil
}

// Build validates input and returns the task Create would add, without
// adding it. Callers that must confirm a task elsewhere first use Build
// followed by Put.
func (s *TaskStore) Build(input CreateInput) (*task.Task, error) {
	now := s.now()
	t, err := task.NewTask(s.userID, input.Title, now)
	if err != nil {
		return nil, err
	}

	t.SetDescription(input.Description)
	t.SetCategory(input.Category)
	t.SetDueDate(input.DueDate)
	t.LinkEmail(input.EmailID)
	t.AddTags(input.Tags...)

	if input.Priority != value_objects.PriorityNone {
		if err := t.SetPriority(input.Priority); err != nil {
			return nil, err
		}
	}
	if input.Status != task.StatusPending {
		if _, err := t.SetStatus(input.Status, now); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Get returns a copy of the task with id.
func (s *TaskStore) Get(id uuid.UUID) (*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
	}
	return s.tasks[i].Clone(), nil
}

// List returns copies of all tasks in insertion order.
func (s *TaskStore) List() []*task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneAll()
}

// Len returns the number of tasks.
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// FindByEmail returns the tasks linked to emailID.
func (s *TaskStore) FindByEmail(emailID string) []*task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*task.Task{}
	for _, t := range s.tasks {
		if t.EmailID() == emailID {
			out = append(out, t.Clone())
		}
	}
	return out
}

// HasEmailTask reports whether a task with this title already came from
// emailID. Titles compare case-insensitively.
func (s *TaskStore) HasEmailTask(emailID, title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	title = strings.TrimSpace(title)
	for _, t := range s.tasks {
		if t.EmailID() == emailID && strings.EqualFold(t.Title(), title) {
			return true
		}
	}
	return false
}

// UpdateStatus moves the task to status and returns the updated copy and
// the status it had before.
func (s *TaskStore) UpdateStatus(id uuid.UUID, status task.Status) (*task.Task, task.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil, task.StatusPending, fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
	}

	t := s.tasks[i]
	previous := t.Status()
	if _, err := t.SetStatus(status, s.now()); err != nil {
		return nil, previous, err
	}
	return t.Clone(), previous, nil
}

// PrioritizedList returns up to limit tasks ordered by descending priority
// rank. Equal ranks keep insertion order. A limit of zero or less returns
// an empty slice.
func (s *TaskStore) PrioritizedList(limit int) []*task.Task {
	if limit <= 0 {
		return []*task.Task{}
	}

	s.mu.RLock()
	out := s.cloneAll()
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority().Rank() > out[j].Priority().Rank()
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Load replaces the collection with tasks, in order. Later duplicates of an
// ID win but keep the position of the first.
func (s *TaskStore) Load(tasks []*task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make([]*task.Task, 0, len(tasks))
	s.index = make(map[uuid.UUID]int, len(tasks))
	for _, t := range tasks {
		s.put(t)
	}
}

// Put inserts t or replaces the stored task with the same ID in place.
func (s *TaskStore) Put(t *task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(t)
}

func (s *TaskStore) put(t *task.Task) {
	c := t.Clone()
	if i, ok := s.index[c.ID()]; ok {
		s.tasks[i] = c
		return
	}
	s.index[c.ID()] = len(s.tasks)
	s.tasks = append(s.tasks, c)
}

func (s *TaskStore) cloneAll() []*task.Task {
	out := make([]*task.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}
