package dashscope

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/compozy/dashscope/engine/core"
	"github.com/compozy/dashscope/pkg/logger"
	"github.com/go-resty/resty/v2"
)

// Request is one outbound HTTP call.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	Body   any
}

// Response is what came back. A Doer returns one for every status code.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Doer performs a synchronous request. It returns an error only when no
// response was received.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

type DoerFunc func(ctx context.Context, req *Request) (*Response, error)

func (f DoerFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

type TransportConfig struct {
	Timeout   time.Duration
	UserAgent string
	Debug     bool
}

// RestyDoer is the production Doer.
type RestyDoer struct {
	client *resty.Client
}

func NewRestyDoer(ctx context.Context, cfg TransportConfig) *RestyDoer {
	client := resty.New().
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{log: logger.FromContext(ctx)})
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.Debug {
		client.SetDebug(true)
	}
	return &RestyDoer{client: client}
}

func (d *RestyDoer) Do(ctx context.Context, req *Request) (*Response, error) {
	logger.FromContext(ctx).Debug("Sending request", "method", req.Method, "url", req.URL,
		"headers", core.RedactHeaders(req.Header))
	r := d.client.R().SetContext(ctx).SetHeaders(req.Header)
	if req.Body != nil {
		r.SetBody(req.Body)
	}
	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, core.RedactString(req.URL), err)
	}
	return &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil
}

// restyLogger routes resty's debug output through the structured logger.
type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
