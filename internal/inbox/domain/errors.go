package domain

import "errors"

var (
	ErrEmailNotFound    = errors.New("email not found")
	ErrInvalidLevel     = errors.New("invalid level")
	ErrSnapshotNotFound = errors.New("inbox snapshot not found")
)
