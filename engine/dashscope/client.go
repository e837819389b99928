// Package dashscope submits generative image and video tasks to the DashScope
// API and drives their asynchronous lifecycle to a terminal outcome.
//
// A task is created with Submit. Async submissions return a handle that Poll
// (bounded by a Budget) or Query (single shot) resolve into a TaskResult.
// Application failures surface as typed errors: RequestError, APIError and
// PollError are returned directly, TaskFailedError and TaskTimedOutError via
// TaskResult.Err.
package dashscope

import (
	"context"
	"time"
)

type ClientConfig struct {
	BaseURL          string
	TransportRetries int
	RetryBackoff     time.Duration
	Recorder         Recorder
	Clock            Clock
}

// Client pairs a Submitter with a Poller sharing one transport and credential
// source.
type Client struct {
	submitter *Submitter
	poller    *Poller
}

func NewClient(doer Doer, creds CredentialProvider, cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Recorder == nil {
		cfg.Recorder = Nop()
	}
	submitter := NewSubmitter(doer, creds, cfg.BaseURL, cfg.Recorder)
	poller := NewPoller(doer, creds, submitter.baseURL+TasksPath,
		WithClock(cfg.Clock),
		WithRecorder(cfg.Recorder),
		WithTransportRetries(cfg.TransportRetries, cfg.RetryBackoff),
	)
	return &Client{submitter: submitter, poller: poller}
}

func (c *Client) Submit(ctx context.Context, req *TaskRequest) (*SubmitOutcome, error) {
	return c.submitter.Submit(ctx, req)
}

func (c *Client) Poll(ctx context.Context, taskID string, kind ResourceKind, budget Budget) (*TaskResult, error) {
	return c.poller.Poll(ctx, taskID, kind, budget)
}

func (c *Client) Query(ctx context.Context, taskID string, kind ResourceKind) (*TaskResult, error) {
	return c.poller.Query(ctx, taskID, kind)
}

// Await resolves a submission: completed responses are returned as-is, a
// handle already terminal at submit time is classified without polling, and
// anything else is polled within budget.
func (c *Client) Await(ctx context.Context, outcome *SubmitOutcome, budget Budget) (*TaskResult, error) {
	if outcome.Completed {
		return outcome.Result(), nil
	}
	if outcome.Status.IsTerminal() {
		return classify(outcome.Kind, outcome.Handle, outcome.Response, OutcomeInProgress), nil
	}
	return c.poller.Poll(ctx, outcome.Handle, outcome.Kind, budget)
}
