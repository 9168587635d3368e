// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package proxy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/llm"
	"github.com/davetashner/gloss/internal/quota"
)

type seen struct {
	path string
	auth string
	body string
}

type recorder struct {
	mu  sync.Mutex
	got []seen
}

func (r *recorder) all() []seen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]seen(nil), r.got...)
}

func newUpstream(t *testing.T) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.got = append(rec.got, seen{path: r.URL.Path, auth: r.Header.Get("Authorization"), body: string(b)})
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/chat/completions":
			_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","model":"gpt-4o-mini",
				"choices":[{"index":0,"message":{"role":"assistant","content":"relayed"},"finish_reason":"stop"}]}`)
		case "/v1/models":
			_, _ = io.WriteString(w, `{"object":"list","data":[{"id":"gpt-4o","object":"model"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newRelay(t *testing.T, upstream string, dailyCap int) *Relay {
	t.Helper()
	r, err := New(upstream, "sk-shared-upstream", quota.NewCounter(dailyCap))
	require.NoError(t, err)
	return r
}

func TestRelay_ForwardsWithSharedKey(t *testing.T) {
	up, got := newUpstream(t)
	relay := newRelay(t, up.URL+"/v1", 5)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gpt-4o-mini"}`))
	req.Header.Set("Authorization", "Bearer client-supplied")
	w := httptest.NewRecorder()
	relay.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "relayed")
	calls := got.all()
	require.Len(t, calls, 1)
	assert.Equal(t, "/v1/chat/completions", calls[0].path)
	assert.Equal(t, "Bearer sk-shared-upstream", calls[0].auth)
	assert.Equal(t, `{"model":"gpt-4o-mini"}`, calls[0].body)
	assert.Equal(t, 4, relay.Counter().Remaining())
}

func TestRelay_QuotaExhausted(t *testing.T) {
	up, got := newUpstream(t)
	relay := newRelay(t, up.URL+"/v1", 1)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		relay.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{}`)))
		assert.Equal(t, want, w.Code, "request %d", i)
	}
	assert.Len(t, got.all(), 1)
}

func TestRelay_ModelsDoNotConsumeQuota(t *testing.T) {
	up, got := newUpstream(t)
	relay := newRelay(t, up.URL+"/v1", 1)

	w := httptest.NewRecorder()
	relay.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/models", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gpt-4o")
	assert.Equal(t, "/v1/models", got.all()[0].path)
	assert.Equal(t, 1, relay.Counter().Remaining())
}

func TestRelay_UnsupportedEndpoint(t *testing.T) {
	up, got := newUpstream(t)
	relay := newRelay(t, up.URL+"/v1", 1)

	w := httptest.NewRecorder()
	relay.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/embeddings", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, got.all())
}

func TestRelay_UpstreamDown(t *testing.T) {
	up, _ := newUpstream(t)
	base := up.URL
	up.Close()
	relay := newRelay(t, base+"/v1", 1)

	w := httptest.NewRecorder()
	relay.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/models", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "upstream_unavailable", body["error"]["type"])
}

func TestRelay_Healthz(t *testing.T) {
	up, _ := newUpstream(t)
	relay := newRelay(t, up.URL+"/v1", 3)

	w := httptest.NewRecorder()
	relay.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"remaining":3`)
}

func TestNew_Validation(t *testing.T) {
	_, err := New("api.openai.com/v1", "k", nil)
	assert.Error(t, err)
	_, err = New("https://api.openai.com/v1", "", nil)
	assert.Error(t, err)

	r, err := New("https://api.openai.com/v1/", "sk-x", nil)
	require.NoError(t, err)
	assert.Equal(t, quota.DefaultDailyCap, r.Counter().Cap())
}

// A gloss client pointed at the relay works with any placeholder key and sees
// quota exhaustion as a rate limit.
func TestRelay_WithOpenAIProvider(t *testing.T) {
	up, got := newUpstream(t)
	relay := httptest.NewServer(newRelay(t, up.URL+"/v1", 1))
	defer relay.Close()

	p, err := llm.NewOpenAIProvider(llm.WithAPIKey("relay"), llm.WithBaseURL(relay.URL+"/v1"))
	require.NoError(t, err)

	req := llm.Request{Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}}}
	resp, err := p.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "relayed", resp.Content)
	assert.Equal(t, "Bearer sk-shared-upstream", got.all()[0].auth)

	_, err = p.Complete(context.Background(), req)
	assert.True(t, apperr.Is(err, apperr.KindRateLimited), "got %v", err)
}
