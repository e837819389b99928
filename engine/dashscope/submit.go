package dashscope

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/compozy/dashscope/pkg/logger"
)

// SubmitOutcome is either an accepted async job (Handle set) or a completed
// synchronous response. The submitter never decides whether to poll.
type SubmitOutcome struct {
	Kind      ResourceKind
	Handle    string
	Status    TaskStatus
	Completed bool
	Response  *TaskResponse
}

// Result renders the outcome without polling: a completed response is
// classified as-is, an accepted job is reported as submitted.
func (o *SubmitOutcome) Result() *TaskResult {
	if o.Completed {
		res := classify(o.Kind, "", o.Response, OutcomeCompleted)
		if !res.Complete {
			res.Success = true
		}
		return res
	}
	return &TaskResult{
		Kind:     o.Kind,
		TaskID:   o.Handle,
		Status:   o.Status,
		Outcome:  OutcomeSubmitted,
		Success:  true,
		Response: o.Response,
		Message:  "task accepted; query the task id for its result",
	}
}

// Submitter sends creation requests.
type Submitter struct {
	doer     Doer
	creds    CredentialProvider
	baseURL  string
	recorder Recorder
}

func NewSubmitter(doer Doer, creds CredentialProvider, baseURL string, recorder Recorder) *Submitter {
	if recorder == nil {
		recorder = Nop()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Submitter{
		doer:     doer,
		creds:    creds,
		baseURL:  strings.TrimRight(baseURL, "/"),
		recorder: recorder,
	}
}

func (s *Submitter) Submit(ctx context.Context, req *TaskRequest) (*SubmitOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	def, err := lookupResource(req.Kind)
	if err != nil {
		return nil, err
	}
	key, err := s.creds.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials: %w", err)
	}
	headers := map[string]string{
		"Authorization": bearer(key),
		"Content-Type":  "application/json",
	}
	async := req.Async || def.forceAsync
	if async {
		headers[HeaderAsync] = "enable"
	}
	target := s.baseURL + def.submitPath
	log := logger.FromContext(ctx).With("kind", req.Kind, "model", req.Model)
	log.Debug("Submitting task", "url", target, "async", async)

	start := time.Now()
	resp, err := s.doer.Do(ctx, &Request{
		Method: http.MethodPost,
		URL:    target,
		Header: headers,
		Body:   req.Body(),
	})
	if err != nil {
		s.recorder.RecordSubmit(ctx, req.Kind, SubmitRequestError, time.Since(start))
		return nil, &RequestError{Operation: "submit", URL: target, Cause: err}
	}
	env, err := decodeResponse(resp)
	if err != nil {
		s.recorder.RecordSubmit(ctx, req.Kind, SubmitAPIError, time.Since(start))
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			log.Warn("Task submission rejected", "status", apiErr.StatusCode, "code", apiErr.Code)
		}
		return nil, err
	}

	outcome := &SubmitOutcome{Kind: req.Kind, Response: env, Status: env.Status()}
	if handle := env.TaskID(); handle != "" {
		outcome.Handle = handle
		if outcome.Status == StatusUnknown {
			outcome.Status = StatusPending
		}
		s.recorder.RecordSubmit(ctx, req.Kind, SubmitAccepted, time.Since(start))
		log.Info("Task accepted", "task_id", handle, "status", outcome.Status)
		return outcome, nil
	}
	outcome.Completed = true
	s.recorder.RecordSubmit(ctx, req.Kind, SubmitCompleted, time.Since(start))
	log.Info("Task completed synchronously", "request_id", env.RequestID)
	return outcome, nil
}
