package dashscope

import (
	"fmt"
	"maps"
	"strings"
)

// TaskRequest describes one generation job. Submit never mutates it.
type TaskRequest struct {
	Kind           ResourceKind
	Model          string
	Prompt         string
	NegativePrompt string
	Size           string
	// Count is the number of images (n); zero leaves it to the service.
	Count        int
	Seed         *int64
	Duration     *int
	PromptExtend *bool
	// Async asks the service to accept the job and return a task id.
	// Video jobs are always async.
	Async bool
	// Extra holds additional parameters merged under the typed fields.
	Extra map[string]any
}

func (r *TaskRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}
	def, err := lookupResource(r.Kind)
	if err != nil {
		return err
	}
	if def.submitPath == "" {
		return fmt.Errorf("%w: resource kind %q cannot be submitted", ErrInvalidRequest, r.Kind)
	}
	if strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: prompt is required", ErrInvalidRequest)
	}
	if r.Count < 0 {
		return fmt.Errorf("%w: count must not be negative", ErrInvalidRequest)
	}
	if r.Duration != nil && *r.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidRequest)
	}
	return nil
}

// Body builds the JSON payload. Optional fields are left out entirely when
// unset: the service treats an absent field differently from a default.
func (r *TaskRequest) Body() map[string]any {
	input := map[string]any{"prompt": r.Prompt}
	if r.NegativePrompt != "" {
		input["negative_prompt"] = r.NegativePrompt
	}
	params := make(map[string]any, len(r.Extra)+5)
	maps.Copy(params, r.Extra)
	if r.Size != "" {
		params["size"] = r.Size
	}
	if r.Count > 0 {
		params["n"] = r.Count
	}
	if r.Seed != nil {
		params["seed"] = *r.Seed
	}
	if r.Duration != nil {
		params["duration"] = *r.Duration
	}
	if r.PromptExtend != nil {
		params["prompt_extend"] = *r.PromptExtend
	}
	return map[string]any{
		"model":      r.Model,
		"input":      input,
		"parameters": params,
	}
}
