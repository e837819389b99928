package dashscope

import "strings"

// TaskStatus is the remote lifecycle state of an asynchronous task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "PENDING"
	StatusRunning   TaskStatus = "RUNNING"
	StatusSucceeded TaskStatus = "SUCCEEDED"
	StatusFailed    TaskStatus = "FAILED"
	StatusCanceled  TaskStatus = "CANCELED"
	StatusUnknown   TaskStatus = "UNKNOWN"
)

// ParseStatus maps a reported status onto the closed set. Absent or
// unrecognized values become StatusUnknown.
func ParseStatus(raw string) TaskStatus {
	switch TaskStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending
	case StatusRunning:
		return StatusRunning
	case StatusSucceeded:
		return StatusSucceeded
	case StatusFailed:
		return StatusFailed
	case StatusCanceled:
		return StatusCanceled
	default:
		return StatusUnknown
	}
}

// IsTerminal reports whether no further transition can follow s.
// UNKNOWN is not terminal: polling keeps going until the budget runs out.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

func (s TaskStatus) String() string {
	return string(s)
}
