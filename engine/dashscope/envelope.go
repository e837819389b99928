package dashscope

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

const placeholderMessage = "task is still processing or output is undefined"

var errInvalidJSON = errors.New("response body is not valid JSON")

// TaskResponse is the envelope shared by submission and status responses.
type TaskResponse struct {
	RequestID string         `json:"request_id,omitempty"`
	Output    *TaskOutput    `json:"output,omitempty"`
	Usage     map[string]any `json:"usage,omitempty"`
	Code      string         `json:"code,omitempty"`
	Message   string         `json:"message,omitempty"`

	status      TaskStatus
	placeholder bool
	payload     map[string]any
	raw         []byte
}

type TaskOutput struct {
	TaskID        string        `json:"task_id,omitempty"`
	TaskStatus    string        `json:"task_status,omitempty"`
	SubmitTime    string        `json:"submit_time,omitempty"`
	ScheduledTime string        `json:"scheduled_time,omitempty"`
	EndTime       string        `json:"end_time,omitempty"`
	Results       []ResultEntry `json:"results,omitempty"`
	VideoURL      string        `json:"video_url,omitempty"`
	OrigPrompt    string        `json:"orig_prompt,omitempty"`
	ActualPrompt  string        `json:"actual_prompt,omitempty"`
	TaskMetrics   *TaskMetrics  `json:"task_metrics,omitempty"`
	Code          string        `json:"code,omitempty"`
	Message       string        `json:"message,omitempty"`
}

// ResultEntry is one item of a batch result; failed entries carry code/message
// instead of a URL.
type ResultEntry struct {
	URL          string `json:"url,omitempty"`
	OrigPrompt   string `json:"orig_prompt,omitempty"`
	ActualPrompt string `json:"actual_prompt,omitempty"`
	Code         string `json:"code,omitempty"`
	Message      string `json:"message,omitempty"`
}

type TaskMetrics struct {
	Total     int `json:"TOTAL"`
	Succeeded int `json:"SUCCEEDED"`
	Failed    int `json:"FAILED"`
}

// Status returns the normalized status of the envelope.
func (r *TaskResponse) Status() TaskStatus {
	if r == nil || r.status == "" {
		return StatusUnknown
	}
	return r.status
}

// Placeholder reports whether the output section was synthesized because the
// service answered with a request id but no output.
func (r *TaskResponse) Placeholder() bool {
	return r != nil && r.placeholder
}

// TaskID returns the task id reported in the output section.
func (r *TaskResponse) TaskID() string {
	if r == nil || r.Output == nil {
		return ""
	}
	return r.Output.TaskID
}

// Payload returns the decoded body as a generic map, including fields this
// package does not model.
func (r *TaskResponse) Payload() map[string]any {
	if r == nil {
		return nil
	}
	return r.payload
}

// Raw returns the undecoded response body.
func (r *TaskResponse) Raw() []byte {
	if r == nil {
		return nil
	}
	return r.raw
}

// ErrorCode prefers the output-level code and falls back to the top-level one.
func (r *TaskResponse) ErrorCode() string {
	if r == nil {
		return ""
	}
	return firstString(r.raw, "output.code", "code")
}

func (r *TaskResponse) ErrorMessage() string {
	if r == nil {
		return ""
	}
	return firstString(r.raw, "output.message", "message")
}

func parseEnvelope(raw []byte) (*TaskResponse, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errInvalidJSON
	}
	var env TaskResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode task response: %w", err)
	}
	if err := json.Unmarshal(raw, &env.payload); err != nil {
		return nil, fmt.Errorf("decode task payload: %w", err)
	}
	env.raw = raw
	env.status = ParseStatus(firstString(raw, "output.task_status", "task_status"))
	return &env, nil
}

// fillPlaceholder turns an output-less response carrying a request id into a
// PENDING placeholder for taskID.
func (r *TaskResponse) fillPlaceholder(taskID string) bool {
	if r.Output != nil || r.RequestID == "" {
		return false
	}
	r.Output = &TaskOutput{
		TaskID:     taskID,
		TaskStatus: string(StatusPending),
		Message:    placeholderMessage,
	}
	r.status = StatusPending
	r.placeholder = true
	if r.payload == nil {
		r.payload = map[string]any{}
	}
	r.payload["output"] = map[string]any{
		"task_id":     taskID,
		"task_status": string(StatusPending),
		"message":     placeholderMessage,
	}
	return true
}

// decodeResponse turns a transport response into an envelope or an *APIError.
func decodeResponse(resp *Response) (*TaskResponse, error) {
	env, parseErr := parseEnvelope(resp.Body)
	if !resp.IsSuccess() {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Code:       http.StatusText(resp.StatusCode),
			Body:       resp.Body,
		}
		if parseErr == nil {
			apiErr.RequestID = env.RequestID
			if code := env.ErrorCode(); code != "" {
				apiErr.Code = code
			}
			apiErr.Message = env.ErrorMessage()
		}
		return nil, apiErr
	}
	if parseErr != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       "InvalidResponse",
			Message:    parseErr.Error(),
			Body:       resp.Body,
		}
	}
	if env.Code != "" {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Message,
			RequestID:  env.RequestID,
			Body:       resp.Body,
		}
	}
	return env, nil
}

func firstString(raw []byte, paths ...string) string {
	for _, p := range paths {
		if v := gjson.GetBytes(raw, p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
