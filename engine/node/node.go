// Package node hosts the DashScope task nodes: it turns loosely typed item
// parameters into task requests, drives them through a TaskClient and renders
// each result as an output record.
package node

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/engine/dashscope"
)

type Name string

const (
	TextToImage        Name = "text-to-image"
	TextToVideo        Name = "text-to-video"
	GetTaskResult      Name = "get-task-result"
	GetVideoTaskResult Name = "get-video-task-result"
)

// Node processes one item at a time.
type Node interface {
	Name() Name
	Execute(ctx context.Context, item core.Input) (core.Output, error)
}

// TaskClient is the subset of dashscope.Client the nodes rely on.
type TaskClient interface {
	Submit(ctx context.Context, req *dashscope.TaskRequest) (*dashscope.SubmitOutcome, error)
	Await(ctx context.Context, outcome *dashscope.SubmitOutcome, budget dashscope.Budget) (*dashscope.TaskResult, error)
	Poll(ctx context.Context, taskID string, kind dashscope.ResourceKind, budget dashscope.Budget) (*dashscope.TaskResult, error)
	Query(ctx context.Context, taskID string, kind dashscope.ResourceKind) (*dashscope.TaskResult, error)
}

// Settings seed the polling defaults of every node. Item parameters still win.
type Settings struct {
	ImageInterval    time.Duration
	ImageMaxAttempts int
	VideoInterval    time.Duration
	VideoMaxAttempts int
	// MaxWait switches nodes to a wall-clock budget when positive.
	MaxWait time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		ImageInterval:    2 * time.Second,
		ImageMaxAttempts: 30,
		VideoInterval:    15 * time.Second,
		VideoMaxAttempts: 60,
	}
}

func (s Settings) imagePolling() map[string]any {
	return pollingDefaults(s.ImageInterval, s.ImageMaxAttempts, s.MaxWait)
}

func (s Settings) videoPolling() map[string]any {
	return pollingDefaults(s.VideoInterval, s.VideoMaxAttempts, s.MaxWait)
}

func pollingDefaults(interval time.Duration, attempts int, maxWait time.Duration) map[string]any {
	m := map[string]any{
		"pollingInterval":    int(interval.Milliseconds()),
		"maxPollingAttempts": attempts,
	}
	if maxWait > 0 {
		m["maxWaitTime"] = WaitSeconds(maxWait)
	}
	return m
}

// WaitSeconds converts a wait to the whole seconds maxWaitTime expects,
// rounding up so a positive wait never becomes zero.
func WaitSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// Registry resolves node names to nodes bound to one client.
type Registry struct {
	nodes map[Name]Node
}

func NewRegistry(client TaskClient, settings Settings) *Registry {
	r := &Registry{nodes: make(map[Name]Node)}
	for _, n := range []Node{
		&textToImage{client: client, settings: settings},
		&textToVideo{client: client, settings: settings},
		&getTaskResult{client: client, settings: settings},
		&getVideoTaskResult{client: client, settings: settings},
	} {
		r.nodes[n.Name()] = n
	}
	return r
}

func (r *Registry) Get(name string) (Node, error) {
	n, ok := r.nodes[Name(name)]
	if !ok {
		return nil, InvalidArgument(
			fmt.Errorf("unknown node %q", name),
			map[string]any{"available": r.Names()},
		)
	}
	return n, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.nodes))
	for name := range r.nodes {
		names = append(names, string(name))
	}
	slices.Sort(names)
	return names
}

