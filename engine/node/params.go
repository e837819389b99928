package node

import (
	"fmt"
	"strings"
	"time"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/engine/dashscope"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

// PollingParams are shared by every node that may wait for a task.
type PollingParams struct {
	// PollingInterval is in milliseconds.
	PollingInterval    int `mapstructure:"pollingInterval"    validate:"gte=0"`
	MaxPollingAttempts int `mapstructure:"maxPollingAttempts" validate:"gte=1"`
	// MaxWaitTime is in seconds; when set it replaces the attempt ceiling.
	MaxWaitTime int `mapstructure:"maxWaitTime" validate:"gte=0"`
}

func (p PollingParams) Budget() dashscope.Budget {
	interval := time.Duration(p.PollingInterval) * time.Millisecond
	if p.MaxWaitTime > 0 {
		return dashscope.WallClockBudget(interval, time.Duration(p.MaxWaitTime)*time.Second)
	}
	return dashscope.AttemptBudget(interval, p.MaxPollingAttempts)
}

type ImageParams struct {
	Model          string         `mapstructure:"model"          validate:"required"`
	Prompt         string         `mapstructure:"prompt"         validate:"required"`
	NegativePrompt string         `mapstructure:"negativePrompt"`
	Size           string         `mapstructure:"size"`
	N              int            `mapstructure:"n"              validate:"gte=1,lte=4"`
	Seed           *int64         `mapstructure:"seed"`
	Async          bool           `mapstructure:"async"`
	WaitForResult  bool           `mapstructure:"waitForResult"`
	Options        map[string]any `mapstructure:"options"`
	PollingParams  `mapstructure:",squash"`
}

func (p *ImageParams) request() *dashscope.TaskRequest {
	return &dashscope.TaskRequest{
		Kind:           dashscope.KindImage,
		Model:          p.Model,
		Prompt:         p.Prompt,
		NegativePrompt: p.NegativePrompt,
		Size:           p.Size,
		Count:          p.N,
		Seed:           p.Seed,
		Async:          p.Async,
		Extra:          p.Options,
	}
}

type VideoParams struct {
	Model          string         `mapstructure:"model"          validate:"required"`
	Prompt         string         `mapstructure:"prompt"         validate:"required"`
	NegativePrompt string         `mapstructure:"negativePrompt"`
	Size           string         `mapstructure:"size"`
	PromptExtend   bool           `mapstructure:"promptExtend"`
	Seed           *int64         `mapstructure:"seed"`
	Duration       *int           `mapstructure:"duration"       validate:"omitempty,gt=0"`
	WaitForResult  bool           `mapstructure:"waitForResult"`
	Options        map[string]any `mapstructure:"options"`
	PollingParams  `mapstructure:",squash"`
}

func (p *VideoParams) request() *dashscope.TaskRequest {
	extend := p.PromptExtend
	return &dashscope.TaskRequest{
		Kind:           dashscope.KindVideo,
		Model:          p.Model,
		Prompt:         p.Prompt,
		NegativePrompt: p.NegativePrompt,
		Size:           p.Size,
		Seed:           p.Seed,
		Duration:       p.Duration,
		PromptExtend:   &extend,
		Async:          true,
		Extra:          p.Options,
	}
}

type TaskResultParams struct {
	TaskID        string `mapstructure:"taskId"        validate:"required"`
	WaitForResult bool   `mapstructure:"waitForResult"`
	PollingParams `mapstructure:",squash"`
}

const (
	PollingModeSingle  = "single"
	PollingModePolling = "polling"
)

type VideoTaskResultParams struct {
	TaskID        string `mapstructure:"taskId"      validate:"required"`
	PollingMode   string `mapstructure:"pollingMode" validate:"oneof=single polling"`
	PollingParams `mapstructure:",squash"`
}

// decodeParams overlays item on defaults, decodes the result into out and
// validates it. Unknown parameters are rejected.
func decodeParams(item core.Input, defaults map[string]any, out any) error {
	merged := core.CopyMaps(defaults)
	for k, v := range item {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		merged[k] = v
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Internal(fmt.Errorf("failed to create decoder: %w", err), nil)
	}
	if err := decoder.Decode(merged); err != nil {
		return InvalidArgument(fmt.Errorf("failed to decode parameters: %w", err), nil)
	}
	if err := validate.Struct(out); err != nil {
		return InvalidArgument(fmt.Errorf("invalid parameters: %w", err), nil)
	}
	return nil
}
