package node

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/compozy/dashscope/engine/dashscope"
	"github.com/stretchr/testify/require"
)

type instantClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *instantClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

type reply struct {
	status int
	body   string
}

// fakeService answers submissions and status queries from per-path scripts.
type fakeService struct {
	mu       sync.Mutex
	scripts  map[string][]reply
	requests []*dashscope.Request
}

func newFakeService() *fakeService {
	return &fakeService{scripts: make(map[string][]reply)}
}

// on registers replies for requests whose URL ends with suffix. The last
// reply repeats.
func (f *fakeService) on(suffix string, replies ...reply) *fakeService {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[suffix] = replies
	return f
}

func (f *fakeService) Do(_ context.Context, req *dashscope.Request) (*dashscope.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	for suffix, replies := range f.scripts {
		if !strings.HasSuffix(req.URL, suffix) {
			continue
		}
		r := replies[0]
		if len(replies) > 1 {
			f.scripts[suffix] = replies[1:]
		}
		return &dashscope.Response{StatusCode: r.status, Body: []byte(r.body)}, nil
	}
	return &dashscope.Response{StatusCode: http.StatusNotFound, Body: []byte(`{"code":"NotFound"}`)}, nil
}

func (f *fakeService) count(suffix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasSuffix(r.URL, suffix) {
			n++
		}
	}
	return n
}

func (f *fakeService) lastBody(t *testing.T, suffix string) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if strings.HasSuffix(f.requests[i].URL, suffix) {
			raw, err := json.Marshal(f.requests[i].Body)
			require.NoError(t, err)
			var body map[string]any
			require.NoError(t, json.Unmarshal(raw, &body))
			return body
		}
	}
	t.Fatalf("no request to %s", suffix)
	return nil
}

func okJSON(body string) reply {
	return reply{status: http.StatusOK, body: body}
}

const (
	imagePath = "/services/aigc/text2image/image-synthesis"
	videoPath = "/services/aigc/video-generation/video-synthesis"
)

func newTestRegistry(svc *fakeService) *Registry {
	client := dashscope.NewClient(svc, dashscope.StaticAPIKey("sk-test"), dashscope.ClientConfig{
		BaseURL: "https://dashscope.test/api/v1",
		Clock:   &instantClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	return NewRegistry(client, DefaultSettings())
}

func mustNode(t *testing.T, r *Registry, name Name) Node {
	t.Helper()
	n, err := r.Get(string(name))
	require.NoError(t, err)
	return n
}
