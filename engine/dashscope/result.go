package dashscope

import "time"

// Outcome is the normalized classification of a task operation.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomePartial is FAILED with at least one usable artifact.
	OutcomePartial    Outcome = "partial_success"
	OutcomeFailed     Outcome = "failed"
	OutcomeCanceled   Outcome = "canceled"
	OutcomeTimedOut   Outcome = "timed_out"
	OutcomeInProgress Outcome = "in_progress"
	// OutcomeSubmitted is an accepted async job the caller chose not to await.
	OutcomeSubmitted Outcome = "submitted"
	// OutcomeCompleted is a synchronous submission that returned its output.
	OutcomeCompleted Outcome = "completed"
)

// TaskResult is the outcome of one submit, query or poll operation.
type TaskResult struct {
	Kind      ResourceKind
	TaskID    string
	Status    TaskStatus
	Outcome   Outcome
	Success   bool
	Attempts  int
	Complete  bool
	Elapsed   time.Duration
	Artifacts []string
	Code      string
	Message   string
	Response  *TaskResponse

	budget Budget
}

// ArtifactURL is the first usable artifact, empty when there is none.
func (r *TaskResult) ArtifactURL() string {
	if r == nil || len(r.Artifacts) == 0 {
		return ""
	}
	return r.Artifacts[0]
}

// Err returns the typed error for failed, canceled and timed-out outcomes.
func (r *TaskResult) Err() error {
	if r == nil {
		return nil
	}
	switch r.Outcome {
	case OutcomeFailed, OutcomeCanceled:
		return &TaskFailedError{
			TaskID:   r.TaskID,
			Status:   r.Status,
			Code:     r.Code,
			Message:  r.Message,
			Attempts: r.Attempts,
		}
	case OutcomeTimedOut:
		return &TaskTimedOutError{
			TaskID:     r.TaskID,
			LastStatus: r.Status,
			Attempts:   r.Attempts,
			Elapsed:    r.Elapsed,
			Budget:     r.budget,
		}
	default:
		return nil
	}
}

// classify maps a status response onto an outcome. pending is the outcome to
// use when the status is not terminal.
func classify(kind ResourceKind, taskID string, resp *TaskResponse, pending Outcome) *TaskResult {
	status := resp.Status()
	result := &TaskResult{
		Kind:     kind,
		TaskID:   taskID,
		Status:   status,
		Complete: status.IsTerminal(),
		Response: resp,
		Code:     resp.ErrorCode(),
		Message:  resp.ErrorMessage(),
	}
	if resp != nil {
		result.Artifacts = kind.Artifacts(resp.Output)
		if result.TaskID == "" {
			result.TaskID = resp.TaskID()
		}
	}
	switch status {
	case StatusSucceeded:
		result.Outcome = OutcomeSucceeded
		result.Success = true
	case StatusFailed:
		if len(result.Artifacts) > 0 {
			result.Outcome = OutcomePartial
			result.Success = true
		} else {
			result.Outcome = OutcomeFailed
		}
	case StatusCanceled:
		result.Outcome = OutcomeCanceled
	default:
		result.Outcome = pending
	}
	return result
}
