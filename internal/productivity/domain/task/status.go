package task

import (
	"fmt"
	"strings"
)

// Status represents the task lifecycle state. Any status may follow any
// other.
type Status int

const (
	StatusPending Status = iota
	StatusInProgress
	StatusComplete
	StatusDeferred
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in_progress"
	case StatusComplete:
		return "complete"
	case StatusDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	return s >= StatusPending && s <= StatusDeferred
}

// ParseStatus converts a status name. "completed" and "in-progress" are
// accepted as aliases.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "in_progress", "in-progress":
		return StatusInProgress, nil
	case "complete", "completed", "done":
		return StatusComplete, nil
	case "deferred":
		return StatusDeferred, nil
	default:
		return StatusPending, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
