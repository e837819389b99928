package node

import (
	"fmt"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/engine/dashscope"
)

const inProgressMessage = "task is still processing; query the task id again later"

// buildRecord renders a result as an output record: the service payload
// (request_id, output, usage) plus normalized lifecycle fields. Failed,
// canceled and timed-out tasks are records too, with success=false and an
// error_code; only request and polling errors abort an item.
func buildRecord(res *dashscope.TaskResult) core.Output {
	rec := core.Output{}
	if res.Response != nil {
		rec = core.Output(core.CopyMaps(res.Response.Payload()))
	}
	rec["success"] = res.Success
	rec["outcome"] = string(res.Outcome)
	if res.TaskID != "" {
		rec["task_id"] = res.TaskID
	}
	if res.Status != dashscope.StatusUnknown || res.Outcome != dashscope.OutcomeCompleted {
		rec["task_status"] = res.Status.String()
	}
	if res.Attempts > 0 {
		rec["polling_attempts"] = res.Attempts
		rec["polling_complete"] = res.Complete
	}
	if len(res.Artifacts) > 0 {
		url := res.ArtifactURL()
		rec["artifact_url"] = url
		rec["artifact_urls"] = res.Artifacts
		if field := res.Kind.ArtifactField(); field != "artifact_url" {
			rec[field] = url
		}
	}
	if code := failureCode(res); code != "" {
		rec["error_code"] = code
	}
	if msg := recordMessage(res); msg != "" {
		rec["message"] = msg
	}
	return rec
}

// failureCode is the node error code of a failed, canceled or timed-out task.
func failureCode(res *dashscope.TaskResult) string {
	switch res.Outcome {
	case dashscope.OutcomeFailed, dashscope.OutcomeCanceled:
		return CodeTaskFailed
	case dashscope.OutcomeTimedOut:
		return CodeTaskTimedOut
	default:
		return ""
	}
}

func recordMessage(res *dashscope.TaskResult) string {
	switch res.Outcome {
	case dashscope.OutcomePartial:
		msg := fmt.Sprintf("task finished with partial results: %d artifact(s) available", len(res.Artifacts))
		if res.Code != "" {
			msg += " (" + res.Code + ")"
		}
		return msg
	case dashscope.OutcomeInProgress:
		if res.Message != "" {
			return res.Message
		}
		return inProgressMessage
	case dashscope.OutcomeFailed, dashscope.OutcomeCanceled, dashscope.OutcomeTimedOut:
		return core.RedactString(res.Err().Error())
	default:
		return res.Message
	}
}
