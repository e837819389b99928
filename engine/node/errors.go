package node

import (
	"errors"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/engine/dashscope"
)

// Canonical error codes carried by node failures.
const (
	CodeInvalidArgument = "InvalidArgument"
	CodeRequestFailed   = "RequestFailed"
	CodeAPIError        = "APIError"
	CodePollFailed      = "PollFailed"
	CodeTaskFailed      = "TaskFailed"
	CodeTaskTimedOut    = "TaskTimedOut"
	CodeInternal        = "Internal"
)

func newError(code string, err error, details map[string]any) *core.Error {
	return core.NewError(err, code, details)
}

func InvalidArgument(err error, details map[string]any) *core.Error {
	return newError(CodeInvalidArgument, err, details)
}

func Internal(err error, details map[string]any) *core.Error {
	return newError(CodeInternal, err, details)
}

// FromError maps a client error onto the node error catalog. Details carry
// what a caller needs to retry or query the task later.
func FromError(err error) *core.Error {
	if err == nil {
		return nil
	}
	if coreErr, ok := core.AsError(err); ok {
		return coreErr
	}
	var (
		reqErr   *dashscope.RequestError
		apiErr   *dashscope.APIError
		pollErr  *dashscope.PollError
		failed   *dashscope.TaskFailedError
		timedOut *dashscope.TaskTimedOutError
	)
	switch {
	case errors.As(err, &pollErr):
		details := map[string]any{"task_id": pollErr.TaskID, "attempts": pollErr.Attempts}
		if errors.As(pollErr.Cause, &apiErr) {
			details["status_code"] = apiErr.StatusCode
			details["api_code"] = apiErr.Code
		}
		return newError(CodePollFailed, err, details)
	case errors.As(err, &reqErr):
		return newError(CodeRequestFailed, err, map[string]any{"operation": reqErr.Operation})
	case errors.As(err, &apiErr):
		details := map[string]any{"status_code": apiErr.StatusCode, "api_code": apiErr.Code}
		if apiErr.RequestID != "" {
			details["request_id"] = apiErr.RequestID
		}
		return newError(CodeAPIError, err, details)
	case errors.As(err, &failed):
		details := map[string]any{"task_id": failed.TaskID, "task_status": failed.Status.String()}
		if failed.Code != "" {
			details["api_code"] = failed.Code
		}
		return newError(CodeTaskFailed, err, details)
	case errors.As(err, &timedOut):
		return newError(CodeTaskTimedOut, err, map[string]any{
			"task_id":          timedOut.TaskID,
			"task_status":      timedOut.LastStatus.String(),
			"polling_attempts": timedOut.Attempts,
			"elapsed_ms":       timedOut.Elapsed.Milliseconds(),
		})
	case errors.Is(err, dashscope.ErrInvalidRequest), errors.Is(err, dashscope.ErrMissingAPIKey):
		return InvalidArgument(err, nil)
	default:
		return Internal(err, nil)
	}
}
