// Package llm provides a provider-agnostic chat completion interface and the
// backends gloss talks to.
package llm

import (
	"context"
	"fmt"
	"net/http"
)

// Roles used in Message.Role.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider abstracts a chat completion API.
type Provider interface {
	// Complete sends the messages and returns the model's reply.
	// Implementations must respect context cancellation and deadlines, and
	// must classify failures as *apperr.Error.
	Complete(ctx context.Context, req Request) (*Response, error)

	// ListModels returns the model identifiers visible to the credential.
	ListModels(ctx context.Context) ([]string, error)
}

// Factory builds a Provider bound to apiKey.
type Factory func(apiKey string) (Provider, error)

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes a single completion request.
type Request struct {
	// Messages is the ordered conversation to send.
	Messages []Message

	// Model overrides the provider's default model. If empty, the provider
	// uses its configured default.
	Model string

	// MaxTokens limits the response length. If zero, the provider uses its
	// own default.
	MaxTokens int

	// Temperature controls randomness. If nil, the provider uses its default.
	Temperature *float64
}

// Response holds the result of a completion call.
type Response struct {
	// Content is the text returned by the model.
	Content string

	// Model is the model that actually served the request.
	Model string

	// FinishReason is the provider's stop reason, if reported.
	FinishReason string

	// Usage reports token consumption.
	Usage Usage
}

// Usage tracks input and output token counts for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Option configures a provider.
type Option func(*options)

type options struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithModel overrides the default model for all requests. An empty model
// keeps the backend default.
func WithModel(model string) Option {
	return func(o *options) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL points the provider at a different endpoint, such as an
// OpenAI-compatible gateway or a test server.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithMaxRetries sets the SDK retry count. Only the Anthropic backend
// retries; it defaults to zero.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

// Provider names accepted by NewProvider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewProvider builds the named backend. An empty name selects OpenAI.
func NewProvider(name string, opts ...Option) (Provider, error) {
	switch name {
	case "", ProviderOpenAI:
		return NewOpenAIProvider(opts...)
	case ProviderAnthropic:
		return NewAnthropicProvider(opts...)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", name)
	}
}

// NewFactory returns a Factory that builds the named backend with opts plus
// the per-call API key.
func NewFactory(name string, opts ...Option) Factory {
	return func(apiKey string) (Provider, error) {
		all := append(append([]Option(nil), opts...), WithAPIKey(apiKey))
		return NewProvider(name, all...)
	}
}
