package dashscope

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_Poll(t *testing.T) {
	t.Run("Should query immediately and stop on SUCCEEDED", func(t *testing.T) {
		clock := newFakeClock()
		doer := newScriptedDoer(
			ok(statusBody("RUNNING")),
			ok(statusBody("RUNNING")),
			ok(statusBody("RUNNING")),
			ok(`{"request_id":"r","output":{"task_id":"task-1","task_status":"SUCCEEDED","results":[{"url":"x"}]}}`),
		)
		poller := newTestPoller(doer, clock)

		res, err := poller.Poll(t.Context(), "task-1", KindImage, AttemptBudget(time.Second, 10))

		require.NoError(t, err)
		assert.Equal(t, OutcomeSucceeded, res.Outcome)
		assert.True(t, res.Success)
		assert.True(t, res.Complete)
		assert.Equal(t, 4, res.Attempts)
		assert.Equal(t, "x", res.ArtifactURL())
		assert.Equal(t, 4, doer.Calls())
		assert.Equal(t, 3, clock.SleepCount())
		assert.Equal(t, 3*time.Second, res.Elapsed)
		assert.NoError(t, res.Err())
	})

	t.Run("Should issue the status query with bearer auth against the task path", func(t *testing.T) {
		doer := newScriptedDoer(ok(statusBody("SUCCEEDED")))
		poller := newTestPoller(doer, newFakeClock())

		_, err := poller.Poll(t.Context(), "task 1", KindImage, AttemptBudget(time.Second, 1))

		require.NoError(t, err)
		req := doer.Call(0)
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, testEndpoint+"/task%201", req.URL)
		assert.Equal(t, "Bearer sk-test", req.Header["Authorization"])
	})

	t.Run("Should stop immediately on CANCELED and report a task failure", func(t *testing.T) {
		clock := newFakeClock()
		doer := newScriptedDoer(ok(statusBody("PENDING")), ok(statusBody("CANCELED")), ok(statusBody("RUNNING")))
		poller := newTestPoller(doer, clock)

		res, err := poller.Poll(t.Context(), "task-1", KindVideo, AttemptBudget(time.Second, 10))

		require.NoError(t, err)
		assert.Equal(t, OutcomeCanceled, res.Outcome)
		assert.False(t, res.Success)
		assert.Equal(t, 2, res.Attempts)
		assert.Equal(t, 2, doer.Calls())
		assert.ErrorIs(t, res.Err(), ErrTaskFailed)
	})

	t.Run("Should report partial success for FAILED with a usable artifact", func(t *testing.T) {
		body := `{"output":{"task_id":"task-1","task_status":"FAILED","code":"InternalError",` +
			`"results":[{"url":"https://img/ok.png"},{"code":"DataInspectionFailed"}]}}`
		poller := newTestPoller(newScriptedDoer(ok(body)), newFakeClock())

		res, err := poller.Poll(t.Context(), "task-1", KindImage, AttemptBudget(time.Second, 5))

		require.NoError(t, err)
		assert.Equal(t, OutcomePartial, res.Outcome)
		assert.True(t, res.Success)
		assert.Equal(t, StatusFailed, res.Status)
		assert.Equal(t, []string{"https://img/ok.png"}, res.Artifacts)
		assert.NoError(t, res.Err())
	})

	t.Run("Should report a task failure for FAILED without artifacts", func(t *testing.T) {
		body := `{"output":{"task_id":"task-1","task_status":"FAILED","code":"InternalError","message":"boom"}}`
		poller := newTestPoller(newScriptedDoer(ok(body)), newFakeClock())

		res, err := poller.Poll(t.Context(), "task-1", KindVideo, AttemptBudget(time.Second, 5))

		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, res.Outcome)
		var failed *TaskFailedError
		require.True(t, errors.As(res.Err(), &failed))
		assert.Equal(t, "InternalError", failed.Code)
		assert.Equal(t, "boom", failed.Message)
		assert.Equal(t, 1, failed.Attempts)
	})

	t.Run("Should issue exactly N queries before timing out on an attempt budget", func(t *testing.T) {
		clock := newFakeClock()
		doer := newScriptedDoer(ok(statusBody("PENDING")))
		poller := newTestPoller(doer, clock)

		res, err := poller.Poll(t.Context(), "task-1", KindImage, AttemptBudget(2*time.Second, 3))

		require.NoError(t, err)
		assert.Equal(t, OutcomeTimedOut, res.Outcome)
		assert.False(t, res.Complete)
		assert.Equal(t, 3, res.Attempts)
		assert.Equal(t, 3, doer.Calls())
		assert.Equal(t, StatusPending, res.Status)
		var timedOut *TaskTimedOutError
		require.True(t, errors.As(res.Err(), &timedOut))
		assert.Equal(t, 3, timedOut.Attempts)
		assert.Equal(t, StatusPending, timedOut.LastStatus)
		assert.ErrorIs(t, res.Err(), ErrTaskTimedOut)
	})

	t.Run("Should time out after one query without sleeping when max attempts is one", func(t *testing.T) {
		clock := newFakeClock()
		doer := newScriptedDoer(ok(statusBody("PENDING")))
		poller := newTestPoller(doer, clock)

		res, err := poller.Poll(t.Context(), "task-1", KindImage, AttemptBudget(time.Minute, 1))

		require.NoError(t, err)
		assert.Equal(t, OutcomeTimedOut, res.Outcome)
		assert.Equal(t, 1, doer.Calls())
		assert.Zero(t, clock.SleepCount())
	})

	t.Run("Should keep polling UNKNOWN until the budget runs out", func(t *testing.T) {
		doer := newScriptedDoer(ok(`{"output":{"task_id":"task-1"}}`))
		poller := newTestPoller(doer, newFakeClock())

		res, err := poller.Poll(t.Context(), "task-1", KindTask, AttemptBudget(time.Second, 4))

		require.NoError(t, err)
		assert.Equal(t, OutcomeTimedOut, res.Outcome)
		assert.Equal(t, StatusUnknown, res.Status)
		assert.Equal(t, 4, doer.Calls())
	})

	t.Run("Should bound total waiting to the wall-clock ceiling plus one interval", func(t *testing.T) {
		clock := newFakeClock()
		doer := newScriptedDoer(ok(statusBody("RUNNING")))
		poller := newTestPoller(doer, clock)
		budget := WallClockBudget(2*time.Second, 5*time.Second)

		res, err := poller.Poll(t.Context(), "task-1", KindVideo, budget)

		require.NoError(t, err)
		assert.Equal(t, OutcomeTimedOut, res.Outcome)
		assert.Equal(t, 4, res.Attempts)
		assert.Equal(t, 6*time.Second, res.Elapsed)
		assert.LessOrEqual(t, clock.TotalSlept(), budget.MaxWait+budget.Interval)
	})

	t.Run("Should count request latency against the wall-clock ceiling", func(t *testing.T) {
		clock := newFakeClock()
		doer := newScriptedDoer(ok(statusBody("RUNNING")))
		doer.clock = clock
		doer.latency = 1500 * time.Millisecond
		poller := newTestPoller(doer, clock)

		res, err := poller.Poll(t.Context(), "task-1", KindVideo, WallClockBudget(2*time.Second, 5*time.Second))

		require.NoError(t, err)
		assert.Equal(t, 2, res.Attempts)
		assert.Equal(t, 5*time.Second, res.Elapsed)
	})

	t.Run("Should fail with a PollError when a later query gets no response", func(t *testing.T) {
		transportErr := errors.New("connection reset")
		doer := newScriptedDoer(ok(statusBody("PENDING")), step{err: transportErr})
		poller := newTestPoller(doer, newFakeClock())

		res, err := poller.Poll(t.Context(), "task-1", KindImage, AttemptBudget(time.Second, 10))

		assert.Nil(t, res)
		var pollErr *PollError
		require.True(t, errors.As(err, &pollErr))
		assert.Equal(t, 1, pollErr.Attempts)
		assert.Equal(t, "task-1", pollErr.TaskID)
		assert.ErrorIs(t, err, ErrPoll)
		assert.ErrorIs(t, err, transportErr)
		assert.Equal(t, 2, doer.Calls())
	})

	t.Run("Should fail with a PollError wrapping the APIError on a non-2xx status query", func(t *testing.T) {
		doer := newScriptedDoer(step{status: http.StatusNotFound, body: `{"code":"NotFound","message":"no task"}`})
		poller := newTestPoller(doer, newFakeClock())

		_, err := poller.Poll(t.Context(), "task-1", KindImage, AttemptBudget(time.Second, 10))

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "NotFound", apiErr.Code)
		assert.ErrorIs(t, err, ErrPoll)
		assert.Equal(t, 1, doer.Calls())
	})

	t.Run("Should retry transport failures when retries are configured", func(t *testing.T) {
		boom := errors.New("dial timeout")
		doer := newScriptedDoer(step{err: boom}, step{err: boom}, ok(statusBody("SUCCEEDED")))
		clock := newFakeClock()
		poller := newTestPoller(doer, clock, WithTransportRetries(2, 250*time.Millisecond))

		res, err := poller.Poll(t.Context(), "task-1", KindImage, AttemptBudget(time.Second, 5))

		require.NoError(t, err)
		assert.Equal(t, 1, res.Attempts)
		assert.Equal(t, 3, doer.Calls())
		assert.Equal(t, 2, clock.SleepCount())
		assert.Equal(t, 500*time.Millisecond, clock.TotalSlept())
	})

	t.Run("Should give up once transport retries are exhausted", func(t *testing.T) {
		boom := errors.New("dial timeout")
		doer := newScriptedDoer(step{err: boom})
		poller := newTestPoller(doer, newFakeClock(), WithTransportRetries(2, time.Millisecond))

		_, err := poller.Poll(t.Context(), "task-1", KindImage, AttemptBudget(time.Second, 5))

		var pollErr *PollError
		require.True(t, errors.As(err, &pollErr))
		assert.Zero(t, pollErr.Attempts)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, doer.Calls())
	})

	t.Run("Should surface cancellation during the wait as a PollError", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		doer := DoerFunc(func(_ context.Context, _ *Request) (*Response, error) {
			cancel()
			return &Response{StatusCode: http.StatusOK, Body: []byte(statusBody("RUNNING"))}, nil
		})
		poller := newTestPoller(doer, newFakeClock())

		_, err := poller.Poll(ctx, "task-1", KindImage, AttemptBudget(time.Second, 5))

		assert.ErrorIs(t, err, ErrPoll)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Should reject an empty task id and an invalid budget", func(t *testing.T) {
		doer := newScriptedDoer(ok(statusBody("SUCCEEDED")))
		poller := newTestPoller(doer, newFakeClock())

		_, err := poller.Poll(t.Context(), " ", KindImage, AttemptBudget(time.Second, 5))
		assert.ErrorIs(t, err, ErrInvalidRequest)
		_, err = poller.Poll(t.Context(), "task-1", KindImage, Budget{Interval: time.Second})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Zero(t, doer.Calls())
	})

	t.Run("Should fail before querying when no api key is available", func(t *testing.T) {
		doer := newScriptedDoer(ok(statusBody("SUCCEEDED")))
		poller := NewPoller(doer, StaticAPIKey(""), testEndpoint, WithClock(newFakeClock()))

		_, err := poller.Poll(t.Context(), "task-1", KindImage, AttemptBudget(time.Second, 5))

		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.Zero(t, doer.Calls())
	})
}

func TestPoller_Query(t *testing.T) {
	t.Run("Should return an in-progress result for a running task", func(t *testing.T) {
		doer := newScriptedDoer(ok(statusBody("RUNNING")))
		poller := newTestPoller(doer, newFakeClock())

		res, err := poller.Query(t.Context(), "task-1", KindImage)

		require.NoError(t, err)
		assert.Equal(t, OutcomeInProgress, res.Outcome)
		assert.Equal(t, StatusRunning, res.Status)
		assert.Equal(t, 1, res.Attempts)
		assert.False(t, res.Complete)
	})

	t.Run("Should classify a finished video task", func(t *testing.T) {
		body := `{"output":{"task_id":"task-1","task_status":"SUCCEEDED","video_url":"https://v/1.mp4"}}`
		poller := newTestPoller(newScriptedDoer(ok(body)), newFakeClock())

		res, err := poller.Query(t.Context(), "task-1", KindVideo)

		require.NoError(t, err)
		assert.Equal(t, OutcomeSucceeded, res.Outcome)
		assert.Equal(t, "https://v/1.mp4", res.ArtifactURL())
	})

	t.Run("Should synthesize a pending placeholder when output is missing", func(t *testing.T) {
		poller := newTestPoller(newScriptedDoer(ok(`{"request_id":"r1"}`)), newFakeClock())

		res, err := poller.Query(t.Context(), "task-7", KindTask)

		require.NoError(t, err)
		assert.Equal(t, StatusPending, res.Status)
		assert.Equal(t, "task-7", res.TaskID)
		assert.Equal(t, placeholderMessage, res.Message)
		assert.True(t, res.Response.Placeholder())
	})

	t.Run("Should reject a response with neither output nor request id", func(t *testing.T) {
		poller := newTestPoller(newScriptedDoer(ok(`{}`)), newFakeClock())

		_, err := poller.Query(t.Context(), "task-7", KindTask)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "InvalidResponse", apiErr.Code)
	})

	t.Run("Should wrap transport failures in a PollError", func(t *testing.T) {
		poller := newTestPoller(newScriptedDoer(step{err: errors.New("refused")}), newFakeClock())

		_, err := poller.Query(t.Context(), "task-7", KindTask)

		assert.ErrorIs(t, err, ErrPoll)
	})
}
