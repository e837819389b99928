package node

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/compozy/dashscope/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcNode struct {
	fn func(ctx context.Context, item core.Input) (core.Output, error)
}

func (f *funcNode) Name() Name {
	return "func"
}

func (f *funcNode) Execute(ctx context.Context, item core.Input) (core.Output, error) {
	return f.fn(ctx, item)
}

func echoNode(delay func(i int) time.Duration) *funcNode {
	return &funcNode{fn: func(ctx context.Context, item core.Input) (core.Output, error) {
		i, _ := item["i"].(int)
		select {
		case <-time.After(delay(i)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if fail, _ := item["fail"].(bool); fail {
			return nil, InvalidArgument(fmt.Errorf("item %d rejected", i), map[string]any{"i": i})
		}
		return core.Output{"i": i}, nil
	}}
}

func TestExecutor_Run(t *testing.T) {
	t.Run("Should keep input order under concurrency", func(t *testing.T) {
		items := []core.Input{{"i": 0}, {"i": 1}, {"i": 2}, {"i": 3}}
		n := echoNode(func(i int) time.Duration { return time.Duration(4-i) * 5 * time.Millisecond })

		outs, err := NewExecutor(4).Run(t.Context(), n, items, Abort)

		require.NoError(t, err)
		require.Len(t, outs, 4)
		for i, out := range outs {
			assert.Equal(t, i, out["i"])
		}
	})

	t.Run("Should never exceed the concurrency limit", func(t *testing.T) {
		var running, peak atomic.Int32
		n := &funcNode{fn: func(_ context.Context, _ core.Input) (core.Output, error) {
			cur := running.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return core.Output{}, nil
		}}
		items := make([]core.Input, 10)

		_, err := NewExecutor(2).Run(t.Context(), n, items, Abort)

		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("Should record failures in place when continuing", func(t *testing.T) {
		items := []core.Input{{"i": 0}, {"i": 1, "fail": true}, {"i": 2}}
		n := echoNode(func(int) time.Duration { return 0 })

		outs, err := NewExecutor(1).Run(t.Context(), n, items, Continue)

		require.NoError(t, err)
		require.Len(t, outs, 3)
		assert.Equal(t, 0, outs[0]["i"])
		assert.Equal(t, false, outs[1]["success"])
		assert.Equal(t, CodeInvalidArgument, outs[1]["code"])
		assert.Equal(t, "item 1 rejected", outs[1]["error"])
		assert.Equal(t, map[string]any{"i": 1}, outs[1]["details"])
		assert.Equal(t, map[string]any{"i": 1, "fail": true}, outs[1]["item"])
		assert.Equal(t, 2, outs[2]["i"])
	})

	t.Run("Should stop at the first failure when aborting", func(t *testing.T) {
		var calls atomic.Int32
		inner := echoNode(func(int) time.Duration { return 0 })
		n := &funcNode{fn: func(ctx context.Context, item core.Input) (core.Output, error) {
			calls.Add(1)
			return inner.Execute(ctx, item)
		}}
		items := []core.Input{{"i": 0}, {"i": 1, "fail": true}, {"i": 2}, {"i": 3}}

		outs, err := NewExecutor(1).Run(t.Context(), n, items, Abort)

		assert.Nil(t, outs)
		var itemErr *ItemError
		require.True(t, errors.As(err, &itemErr))
		assert.Equal(t, 1, itemErr.Index)
		coreErr, ok := core.AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeInvalidArgument, coreErr.Code)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("Should keep running after a timed-out task when aborting", func(t *testing.T) {
		svc := newFakeService().
			on("/tasks/t-slow", okJSON(`{"request_id":"r1","output":{"task_id":"t-slow","task_status":"PENDING"}}`)).
			on("/tasks/t-done", okJSON(`{"output":{"task_id":"t-done","task_status":"SUCCEEDED","results":[{"url":"u"}]}}`))
		n := mustNode(t, newTestRegistry(svc), GetTaskResult)
		items := []core.Input{
			{"taskId": "t-slow", "waitForResult": true, "maxPollingAttempts": 1},
			{"taskId": "t-done", "waitForResult": true},
		}

		outs, err := NewExecutor(1).Run(t.Context(), n, items, Abort)

		require.NoError(t, err)
		require.Len(t, outs, 2)
		assert.Equal(t, false, outs[0]["success"])
		assert.Equal(t, "timed_out", outs[0]["outcome"])
		assert.Equal(t, "r1", outs[0]["request_id"])
		assert.Contains(t, outs[0], "output")
		assert.Equal(t, 1, svc.count("/tasks/t-slow"))
		assert.Equal(t, true, outs[1]["success"])
	})

	t.Run("Should return an empty result for no items", func(t *testing.T) {
		outs, err := NewExecutor(3).Run(t.Context(), echoNode(func(int) time.Duration { return 0 }), nil, Abort)

		require.NoError(t, err)
		assert.Empty(t, outs)
	})

	t.Run("Should report a canceled parent context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := NewExecutor(1).Run(ctx, echoNode(func(int) time.Duration { return time.Second }),
			[]core.Input{{"i": 0}}, Continue)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFromError(t *testing.T) {
	t.Run("Should keep coded errors as they are", func(t *testing.T) {
		orig := InvalidArgument(errors.New("bad"), nil)
		assert.Same(t, orig, FromError(fmt.Errorf("wrapped: %w", orig)))
	})

	t.Run("Should map unknown errors to Internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, FromError(errors.New("boom")).Code)
		assert.Nil(t, FromError(nil))
	})
}
