package dashscope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRequest_Validate(t *testing.T) {
	t.Run("Should accept a minimal image request", func(t *testing.T) {
		req := &TaskRequest{Kind: KindImage, Model: "wanx2.1-t2i-turbo", Prompt: "a cat"}
		assert.NoError(t, req.Validate())
	})

	t.Run("Should reject missing model or prompt", func(t *testing.T) {
		err := (&TaskRequest{Kind: KindImage, Prompt: "a cat"}).Validate()
		assert.ErrorIs(t, err, ErrInvalidRequest)
		err = (&TaskRequest{Kind: KindImage, Model: "m", Prompt: "  "}).Validate()
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("Should reject kinds that have no submit endpoint", func(t *testing.T) {
		err := (&TaskRequest{Kind: KindTask, Model: "m", Prompt: "p"}).Validate()
		assert.ErrorIs(t, err, ErrInvalidRequest)
		err = (&TaskRequest{Kind: "audio", Model: "m", Prompt: "p"}).Validate()
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("Should reject non-positive duration", func(t *testing.T) {
		zero := 0
		err := (&TaskRequest{Kind: KindVideo, Model: "m", Prompt: "p", Duration: &zero}).Validate()
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestTaskRequest_Body(t *testing.T) {
	t.Run("Should omit optional fields that were not set", func(t *testing.T) {
		req := &TaskRequest{Kind: KindImage, Model: "wanx-v1", Prompt: "a cat"}

		body := req.Body()

		assert.Equal(t, "wanx-v1", body["model"])
		assert.Equal(t, map[string]any{"prompt": "a cat"}, body["input"])
		assert.Empty(t, body["parameters"])
	})

	t.Run("Should include every optional field that was set", func(t *testing.T) {
		seed := int64(42)
		duration := 5
		extend := false
		req := &TaskRequest{
			Kind:           KindVideo,
			Model:          "wanx2.1-t2v-turbo",
			Prompt:         "waves",
			NegativePrompt: "blur",
			Size:           "1280*720",
			Count:          2,
			Seed:           &seed,
			Duration:       &duration,
			PromptExtend:   &extend,
			Extra:          map[string]any{"style": "<auto>", "size": "ignored"},
		}

		body := req.Body()

		input, ok := body["input"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "blur", input["negative_prompt"])
		params, ok := body["parameters"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "1280*720", params["size"])
		assert.Equal(t, 2, params["n"])
		assert.Equal(t, int64(42), params["seed"])
		assert.Equal(t, 5, params["duration"])
		assert.Equal(t, false, params["prompt_extend"])
		assert.Equal(t, "<auto>", params["style"])
	})

	t.Run("Should not mutate the request extras", func(t *testing.T) {
		extra := map[string]any{"style": "<photography>"}
		req := &TaskRequest{Kind: KindImage, Model: "m", Prompt: "p", Size: "512*512", Extra: extra}

		req.Body()

		assert.Equal(t, map[string]any{"style": "<photography>"}, extra)
	})
}
