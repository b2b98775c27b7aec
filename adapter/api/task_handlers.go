package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/calmbox/internal/productivity/application/commands"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/queries"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type createTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	Category    string   `json:"category"`
	DueDate     string   `json:"due_date"` // YYYY-MM-DD
	EmailID     string   `json:"email_id"`
	Tags        []string `json:"tags"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateStatusResponse struct {
	Task     queries.TaskDTO `json:"task"`
	Previous string          `json:"previous"`
	Changed  bool            `json:"changed"`
}

type extractResponse struct {
	Created []queries.TaskDTO `json:"created"`
	Skipped []string          `json:"skipped"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	tasks, err := s.app.ListTasksHandler.Handle(r.Context(), queries.ListTasksQuery{
		Status:      q.Get("status"),
		EmailID:     q.Get("email_id"),
		OpenOnly:    boolParam(q.Get("open")),
		Prioritized: boolParam(q.Get("prioritized")),
		Limit:       limit,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	cmd := commands.CreateTaskCommand{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Category:    req.Category,
		EmailID:     req.EmailID,
		Tags:        req.Tags,
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			s.fail(w, r, &badRequestError{err: fmt.Errorf("due_date must be YYYY-MM-DD: %w", err)})
			return
		}
		cmd.DueDate = &due
	}

	result, err := s.app.CreateTaskHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, queries.ToDTO(result.Task))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	dto, err := s.app.GetTaskHandler.Handle(r.Context(), queries.GetTaskQuery{TaskID: id})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, dto)
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.app.UpdateTaskStatusHandler.Handle(r.Context(), commands.UpdateTaskStatusCommand{
		TaskID: id,
		Status: req.Status,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, updateStatusResponse{
		Task:     queries.ToDTO(result.Task),
		Previous: result.Previous.String(),
		Changed:  result.Changed,
	})
}

func (s *Server) handleExtractTasks(w http.ResponseWriter, r *http.Request) {
	result, err := s.app.ExtractTasksHandler.Handle(r.Context(), commands.ExtractTasksCommand{
		EmailID: chi.URLParam(r, "emailID"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := extractResponse{Created: make([]queries.TaskDTO, 0, len(result.Created)), Skipped: result.Skipped}
	for _, t := range result.Created {
		resp.Created = append(resp.Created, queries.ToDTO(t))
	}
	status := http.StatusOK
	if len(resp.Created) > 0 {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, resp)
}

func taskIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id", task.ErrTaskNotFound)
	}
	return id, nil
}
