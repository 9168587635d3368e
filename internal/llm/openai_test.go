package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/llm"
)

const chatOK = `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"你好"},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`

func newOpenAIServer(t *testing.T, handler http.HandlerFunc) *llm.OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := llm.NewOpenAIProvider(llm.WithAPIKey("sk-test-123456"), llm.WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)
	return p
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestOpenAIComplete_RequestShape(t *testing.T) {
	var (
		captured map[string]any
		auth     string
		path     string
	)
	p := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&captured)
		respond(http.StatusOK, chatOK)(w, r)
	})

	temp := 0.3
	resp, err := p.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "sys"},
			{Role: llm.RoleUser, Content: "hello"},
		},
		MaxTokens:   1024,
		Temperature: &temp,
	})
	require.NoError(t, err)

	assert.Equal(t, "你好", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 12, resp.Usage.InputTokens)

	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "Bearer sk-test-123456", auth)
	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.Equal(t, float64(1024), captured["max_tokens"])
	assert.InDelta(t, 0.3, captured["temperature"], 1e-6)
	msgs, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestOpenAIComplete_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   apperr.Kind
		detail string
	}{
		{"unauthorized", 401, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, apperr.KindInvalidCredential, "Incorrect API key provided"},
		{"rate limited", 429, `{"error":{"message":"Rate limit reached","type":"requests"}}`, apperr.KindRateLimited, "Rate limit reached"},
		{"payment", 402, `{"error":{"message":"insufficient_quota","type":"billing"}}`, apperr.KindInsufficientBalance, "insufficient_quota"},
		{"server", 503, `{"error":{"message":"overloaded","type":"server_error"}}`, apperr.KindUpstreamUnavailable, "overloaded"},
		{"bad request", 400, `{"error":{"message":"bad model","type":"invalid_request_error"}}`, apperr.KindUpstream, "bad model"},
		{"non-json error body", 502, `<html>Bad Gateway</html>`, apperr.KindUpstreamUnavailable, ""},
		{"non-json generic", 418, `teapot`, apperr.KindUpstream, "HTTP 418"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newOpenAIServer(t, respond(tt.status, tt.body))

			_, err := p.Complete(context.Background(), userReq("hi"))
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err))
			if tt.detail != "" {
				assert.Contains(t, err.Error(), tt.detail)
			}
		})
	}
}

func TestOpenAIComplete_UnauthorizedAsksForVerification(t *testing.T) {
	p := newOpenAIServer(t, respond(401, `{"error":{"message":"bad key"}}`))
	_, err := p.Complete(context.Background(), userReq("hi"))
	assert.Contains(t, err.Error(), "verify your API key")
}

func TestOpenAIComplete_DataShape(t *testing.T) {
	for name, body := range map[string]string{
		"no choices":    `{"id":"x","choices":[]}`,
		"empty message": `{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":""}}]}`,
		"not json":      `this is not json`,
		"truncated":     `{"id":"x","choices":[`,
	} {
		t.Run(name, func(t *testing.T) {
			p := newOpenAIServer(t, respond(http.StatusOK, body))
			_, err := p.Complete(context.Background(), userReq("hi"))
			require.Error(t, err)
			assert.Equal(t, apperr.KindDataShape, apperr.KindOf(err))
		})
	}
}

func TestOpenAIComplete_Timeout(t *testing.T) {
	p := newOpenAIServer(t, func(_ http.ResponseWriter, r *http.Request) {
		// Drain the body so the server can observe the client disconnect.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Complete(ctx, userReq("hi"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindTimeout, apperr.KindOf(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestOpenAIComplete_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p, err := llm.NewOpenAIProvider(llm.WithAPIKey("sk"), llm.WithBaseURL(url+"/v1"))
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), userReq("hi"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
}

func TestOpenAIListModels(t *testing.T) {
	p := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		respond(http.StatusOK, `{"object":"list","data":[{"id":"gpt-4o-mini","object":"model"},{"id":"gpt-4o","object":"model"}]}`)(w, r)
	})

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o-mini", "gpt-4o"}, models)
}

func TestOpenAIListModels_Unauthorized(t *testing.T) {
	p := newOpenAIServer(t, respond(401, `{"error":{"message":"Incorrect API key provided"}}`))
	_, err := p.ListModels(context.Background())
	assert.True(t, apperr.NeedsCredentialSetup(err))
}
