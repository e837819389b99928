package dashscope

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRequest = errors.New("invalid task request")
	ErrMissingAPIKey  = errors.New("api key is required")
	ErrRequest        = errors.New("request error")
	ErrAPI            = errors.New("api error")
	ErrPoll           = errors.New("polling error")
	ErrTaskFailed     = errors.New("task failed")
	ErrTaskTimedOut   = errors.New("task timed out")
)

// RequestError is a submission that never got an HTTP response.
type RequestError struct {
	Operation string
	URL       string
	Cause     error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request error during %s: %v", e.Operation, e.Cause)
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequest
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// APIError is an application error reported by the service: a non-2xx status
// or an error code in the body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("api error (status %d): %s - %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// PollError is a status query that failed mid-loop. Attempts counts the
// status queries that completed before the failure.
type PollError struct {
	TaskID   string
	Attempts int
	Cause    error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("polling task %s failed after %d attempt(s): %v", e.TaskID, e.Attempts, e.Cause)
}

func (e *PollError) Is(target error) bool {
	return target == ErrPoll
}

func (e *PollError) Unwrap() error {
	return e.Cause
}

// TaskFailedError describes a task that ended FAILED without usable results,
// or was CANCELED.
type TaskFailedError struct {
	TaskID   string
	Status   TaskStatus
	Code     string
	Message  string
	Attempts int
}

func (e *TaskFailedError) Error() string {
	msg := fmt.Sprintf("task %s ended with status %s", e.TaskID, e.Status)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += " - " + e.Message
	}
	return msg
}

func (e *TaskFailedError) Is(target error) bool {
	return target == ErrTaskFailed
}

// TaskTimedOutError reports a budget exhausted before a terminal status.
type TaskTimedOutError struct {
	TaskID     string
	LastStatus TaskStatus
	Attempts   int
	Elapsed    time.Duration
	Budget     Budget
}

func (e *TaskTimedOutError) Error() string {
	return fmt.Sprintf(
		"task %s did not finish within %s: last status %s after %d attempt(s); query the task id later",
		e.TaskID, e.Budget, e.LastStatus, e.Attempts,
	)
}

func (e *TaskTimedOutError) Is(target error) bool {
	return target == ErrTaskTimedOut
}
