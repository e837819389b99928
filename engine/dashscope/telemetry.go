package dashscope

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	SubmitAccepted     = "accepted"
	SubmitCompleted    = "completed"
	SubmitRequestError = "request_error"
	SubmitAPIError     = "api_error"
	tickError          = "error"
)

// Recorder receives lifecycle measurements from the submitter and poller.
type Recorder interface {
	RecordSubmit(ctx context.Context, kind ResourceKind, result string, latency time.Duration)
	RecordTick(ctx context.Context, kind ResourceKind, status string)
	RecordOutcome(ctx context.Context, kind ResourceKind, outcome Outcome, attempts int, elapsed time.Duration)
}

type otelRecorder struct {
	submissions   metric.Int64Counter
	submitLatency metric.Float64Histogram
	ticks         metric.Int64Counter
	outcomes      metric.Int64Counter
	pollDuration  metric.Float64Histogram
	pollAttempts  metric.Int64Histogram
}

// NewRecorder registers the task instruments on meter.
func NewRecorder(meter metric.Meter) (Recorder, error) {
	if meter == nil {
		return Nop(), nil
	}
	r := &otelRecorder{}
	var err error
	if r.submissions, err = meter.Int64Counter(
		"dashscope_task_submissions_total",
		metric.WithDescription("Task submissions grouped by kind and result"),
	); err != nil {
		return nil, err
	}
	if r.submitLatency, err = meter.Float64Histogram(
		"dashscope_task_submit_latency_seconds",
		metric.WithDescription("Submission round-trip latency in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if r.ticks, err = meter.Int64Counter(
		"dashscope_task_poll_ticks_total",
		metric.WithDescription("Status queries grouped by kind and observed status"),
	); err != nil {
		return nil, err
	}
	if r.outcomes, err = meter.Int64Counter(
		"dashscope_task_outcomes_total",
		metric.WithDescription("Polling outcomes grouped by kind and outcome"),
	); err != nil {
		return nil, err
	}
	if r.pollDuration, err = meter.Float64Histogram(
		"dashscope_task_poll_duration_seconds",
		metric.WithDescription("Wall-clock time spent polling a task"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if r.pollAttempts, err = meter.Int64Histogram(
		"dashscope_task_poll_attempts",
		metric.WithDescription("Status queries issued per polled task"),
	); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *otelRecorder) RecordSubmit(ctx context.Context, kind ResourceKind, result string, latency time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("result", result),
	)
	r.submissions.Add(ctx, 1, attrs)
	r.submitLatency.Record(ctx, latency.Seconds(), attrs)
}

func (r *otelRecorder) RecordTick(ctx context.Context, kind ResourceKind, status string) {
	r.ticks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("status", status),
	))
}

func (r *otelRecorder) RecordOutcome(
	ctx context.Context,
	kind ResourceKind,
	outcome Outcome,
	attempts int,
	elapsed time.Duration,
) {
	attrs := metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("outcome", string(outcome)),
	)
	r.outcomes.Add(ctx, 1, attrs)
	r.pollDuration.Record(ctx, elapsed.Seconds(), attrs)
	r.pollAttempts.Record(ctx, int64(attempts), attrs)
}

type nopRecorder struct{}

// Nop returns a Recorder that drops everything.
func Nop() Recorder {
	return nopRecorder{}
}

func (nopRecorder) RecordSubmit(context.Context, ResourceKind, string, time.Duration) {}

func (nopRecorder) RecordTick(context.Context, ResourceKind, string) {}

func (nopRecorder) RecordOutcome(context.Context, ResourceKind, Outcome, int, time.Duration) {}
