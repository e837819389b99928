package node

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/pkg/logger"
	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"
)

// FailurePolicy decides what a failed item does to the rest of the batch.
type FailurePolicy int

const (
	// Abort cancels the remaining items and returns the first failure.
	Abort FailurePolicy = iota
	// Continue records the failure in place of the item's output.
	Continue
)

func (p FailurePolicy) String() string {
	if p == Continue {
		return "continue"
	}
	return "abort"
}

// ItemError annotates a failure with the index of the item that caused it.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

type Executor struct {
	concurrency int
}

// NewExecutor runs at most concurrency items at once; values below one mean
// sequential execution.
func NewExecutor(concurrency int) *Executor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Executor{concurrency: concurrency}
}

// Run executes node once per item. Outputs keep the order of items whatever
// the completion order.
func (e *Executor) Run(ctx context.Context, n Node, items []core.Input, policy FailurePolicy) ([]core.Output, error) {
	runID := ksuid.New().String()
	log := logger.FromContext(ctx).With("run_id", runID, "node", n.Name())
	log.Info("Starting batch", "items", len(items), "concurrency", e.concurrency, "policy", policy)
	start := time.Now()

	outputs := make([]core.Output, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, item := range items {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			itemLog := log.With("item", i)
			out, err := n.Execute(logger.ContextWithLogger(gctx, itemLog), item)
			if err == nil {
				outputs[i] = out
				return nil
			}
			coded := FromError(err)
			if policy == Continue {
				itemLog.Warn("Item failed; continuing", "code", coded.Code, "error", coded.Message)
				outputs[i] = failureRecord(item, coded)
				return nil
			}
			itemLog.Error("Item failed; aborting batch", "code", coded.Code, "error", coded.Message)
			return &ItemError{Index: i, Err: coded}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Info("Batch finished", "items", len(items), "duration", time.Since(start).Round(time.Millisecond))
	return outputs, nil
}

func failureRecord(item core.Input, err *core.Error) core.Output {
	rec := core.Output{
		"success": false,
		"error":   core.RedactString(err.Message),
		"code":    err.Code,
		"item":    map[string]any(item),
	}
	if len(err.Details) > 0 {
		rec["details"] = err.Details
	}
	return rec
}
