package dashscope

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/compozy/dashscope/pkg/logger"
	"github.com/sethvargo/go-retry"
)

const defaultRetryBackoff = 500 * time.Millisecond

// Poller drives the status-query loop for one task at a time. It holds no
// per-task state, so a single Poller may serve concurrent operations.
//
// Timing discipline: the first status query is issued immediately; every
// later query is preceded by exactly one Budget.Interval wait.
type Poller struct {
	doer         Doer
	creds        CredentialProvider
	endpoint     string
	clock        Clock
	recorder     Recorder
	retries      int
	retryBackoff time.Duration
}

type PollerOption func(*Poller)

func WithClock(clock Clock) PollerOption {
	return func(p *Poller) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func WithRecorder(recorder Recorder) PollerOption {
	return func(p *Poller) {
		if recorder != nil {
			p.recorder = recorder
		}
	}
}

// WithTransportRetries retries a status query up to n more times when it fails
// without any HTTP response. Status-based outcomes are never retried here.
func WithTransportRetries(n int, backoff time.Duration) PollerOption {
	return func(p *Poller) {
		if n > 0 {
			p.retries = n
		}
		if backoff > 0 {
			p.retryBackoff = backoff
		}
	}
}

// NewPoller builds a poller querying {endpoint}/{task_id}.
func NewPoller(doer Doer, creds CredentialProvider, endpoint string, opts ...PollerOption) *Poller {
	p := &Poller{
		doer:         doer,
		creds:        creds,
		endpoint:     strings.TrimRight(endpoint, "/"),
		clock:        realClock{},
		recorder:     Nop(),
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll queries the task until it reaches a terminal status or the budget runs
// out. The returned error is always a *PollError; terminal failures and
// timeouts are reported through the result (see TaskResult.Err).
func (p *Poller) Poll(ctx context.Context, handle string, kind ResourceKind, budget Budget) (*TaskResult, error) {
	if strings.TrimSpace(handle) == "" {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalidRequest)
	}
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	key, err := p.creds.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials: %w", err)
	}
	log := logger.FromContext(ctx).With("task_id", handle, "kind", kind)

	start := p.clock.Now()
	attempts := 0
	var last *TaskResponse
	for !budget.Exhausted(attempts, p.clock.Now().Sub(start)) {
		if attempts > 0 {
			if err := p.clock.Sleep(ctx, budget.Interval); err != nil {
				return nil, &PollError{TaskID: handle, Attempts: attempts, Cause: err}
			}
		}
		resp, err := p.tick(ctx, handle, key)
		if err != nil {
			p.recorder.RecordTick(ctx, kind, tickError)
			log.Warn("Task status query failed", "attempt", attempts+1, "error", err)
			return nil, &PollError{TaskID: handle, Attempts: attempts, Cause: err}
		}
		attempts++
		last = resp
		status := resp.Status()
		p.recorder.RecordTick(ctx, kind, status.String())
		log.Debug("Task status polled", "attempt", attempts, "status", status)
		if status.IsTerminal() {
			break
		}
	}

	elapsed := p.clock.Now().Sub(start)
	result := classify(kind, handle, last, OutcomeTimedOut)
	result.Attempts = attempts
	result.Elapsed = elapsed
	result.budget = budget
	if result.Outcome == OutcomeTimedOut && result.Status == StatusUnknown && last == nil {
		result.Status = StatusPending
	}
	p.recorder.RecordOutcome(ctx, kind, result.Outcome, attempts, elapsed)
	log.Info("Task polling finished",
		"outcome", result.Outcome,
		"status", result.Status,
		"attempts", attempts,
		"elapsed", elapsed.Round(time.Millisecond),
	)
	return result, nil
}

// Query issues a single status request and classifies it without looping.
func (p *Poller) Query(ctx context.Context, handle string, kind ResourceKind) (*TaskResult, error) {
	if strings.TrimSpace(handle) == "" {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalidRequest)
	}
	key, err := p.creds.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials: %w", err)
	}
	resp, err := p.tick(ctx, handle, key)
	if err != nil {
		return nil, &PollError{TaskID: handle, Attempts: 0, Cause: err}
	}
	if resp.Output == nil {
		return nil, &APIError{
			StatusCode: http.StatusOK,
			Code:       "InvalidResponse",
			Message:    "invalid response format: missing output section",
			RequestID:  resp.RequestID,
			Body:       resp.Raw(),
		}
	}
	p.recorder.RecordTick(ctx, kind, resp.Status().String())
	result := classify(kind, handle, resp, OutcomeInProgress)
	result.Attempts = 1
	if resp.Placeholder() {
		result.Message = placeholderMessage
	}
	return result, nil
}

// tick performs one status query. Only transport failures are retried, and
// only when retries are configured; a retried tick still counts once. The
// retry delays come from the backoff but are slept on the poller's clock.
func (p *Poller) tick(ctx context.Context, handle, key string) (*TaskResponse, error) {
	req := &Request{
		Method: http.MethodGet,
		URL:    p.endpoint + "/" + url.PathEscape(handle),
		Header: map[string]string{"Authorization": bearer(key)},
	}
	backoff := retry.WithMaxRetries(uint64(p.retries), retry.NewConstant(p.retryBackoff)) // #nosec G115 -- retries is never negative
	var resp *Response
	for {
		r, err := p.doer.Do(ctx, req)
		if err == nil {
			resp = r
			break
		}
		delay, stop := backoff.Next()
		if stop || ctx.Err() != nil {
			return nil, err
		}
		if sleepErr := p.clock.Sleep(ctx, delay); sleepErr != nil {
			return nil, err
		}
	}
	env, err := decodeResponse(resp)
	if err != nil {
		return nil, err
	}
	env.fillPlaceholder(handle)
	return env, nil
}
