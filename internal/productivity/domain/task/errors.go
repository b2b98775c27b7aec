package task

import "errors"

var (
	ErrEmptyTitle    = errors.New("task title cannot be empty")
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid task status")
)
