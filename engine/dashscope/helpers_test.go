package dashscope

import (
	"context"
	"sync"
	"time"
)

const testEndpoint = "https://dashscope.test/api/v1/tasks"

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Advance(d)
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) TotalSlept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total time.Duration
	for _, d := range c.sleeps {
		total += d
	}
	return total
}

func (c *fakeClock) SleepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sleeps)
}

type step struct {
	status int
	body   string
	err    error
}

func ok(body string) step {
	return step{status: 200, body: body}
}

// scriptedDoer replays steps in order and repeats the last one when the
// script runs out.
type scriptedDoer struct {
	mu      sync.Mutex
	steps   []step
	calls   []*Request
	latency time.Duration
	clock   *fakeClock
}

func newScriptedDoer(steps ...step) *scriptedDoer {
	return &scriptedDoer{steps: steps}
}

func (d *scriptedDoer) Do(_ context.Context, req *Request) (*Response, error) {
	d.mu.Lock()
	idx := len(d.calls)
	d.calls = append(d.calls, req)
	if idx >= len(d.steps) {
		idx = len(d.steps) - 1
	}
	s := d.steps[idx]
	d.mu.Unlock()
	if d.clock != nil && d.latency > 0 {
		d.clock.Advance(d.latency)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &Response{StatusCode: s.status, Body: []byte(s.body)}, nil
}

func (d *scriptedDoer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func (d *scriptedDoer) Call(i int) *Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[i]
}

func statusBody(status string) string {
	return `{"request_id":"req-1","output":{"task_id":"task-1","task_status":"` + status + `"}}`
}

func newTestPoller(doer Doer, clock Clock, opts ...PollerOption) *Poller {
	opts = append([]PollerOption{WithClock(clock)}, opts...)
	return NewPoller(doer, StaticAPIKey("sk-test"), testEndpoint, opts...)
}
