// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/davetashner/gloss/internal/apperr"
)

const (
	// DefaultAnthropicModel is the model used when no override is provided.
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"

	// defaultAnthropicMaxTokens is used when a request sets no limit; the
	// Messages API requires one.
	defaultAnthropicMaxTokens = 1024
)

// AnthropicProvider implements Provider using the official Anthropic SDK.
type AnthropicProvider struct {
	client     anthropic.Client
	model      string
	maxRetries int
}

// Compile-time check that AnthropicProvider satisfies the Provider interface.
var _ Provider = (*AnthropicProvider)(nil)

// NewAnthropicProvider creates a new Anthropic provider. SDK retries are off
// unless WithMaxRetries says otherwise.
func NewAnthropicProvider(opts ...Option) (*AnthropicProvider, error) {
	o := options{model: DefaultAnthropicModel}
	for _, opt := range opts {
		opt(&o)
	}
	if o.apiKey == "" {
		return nil, apperr.New(apperr.KindMissingCredential, "no API key configured")
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(o.apiKey),
		option.WithMaxRetries(o.maxRetries),
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(o.baseURL))
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(o.httpClient))
	}

	return &AnthropicProvider{
		client:     anthropic.NewClient(clientOpts...),
		model:      o.model,
		maxRetries: o.maxRetries,
	}, nil
}

// Complete sends a completion request to the Anthropic Messages API. System
// messages are lifted into the system parameter.
func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	maxTokens := int64(defaultAnthropicMaxTokens)
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyAnthropic(ctx, err)
	}

	// Extract text from content blocks.
	var content string
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += variant.Text
		}
	}
	if content == "" {
		return nil, apperr.New(apperr.KindDataShape, "completion response has no text content")
	}

	return &Response{
		Content:      content,
		Model:        string(msg.Model),
		FinishReason: string(msg.StopReason),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

// ListModels lists the models available to the key.
func (p *AnthropicProvider) ListModels(ctx context.Context) ([]string, error) {
	page, err := p.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, classifyAnthropic(ctx, err)
	}
	out := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		out = append(out, m.ID)
	}
	return out, nil
}

// Model returns the default model configured for this provider.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// MaxRetries returns the configured max retry count.
func (p *AnthropicProvider) MaxRetries() int {
	return p.maxRetries
}

func classifyAnthropic(ctx context.Context, err error) error {
	if c := classifyContext(ctx, err); c != nil {
		return c
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		e := apperr.FromStatus(apiErr.StatusCode, anthropicErrorMessage(apiErr.RawJSON()))
		e.Err = err
		return e
	}
	return classifyTransport(err)
}

// anthropicErrorMessage pulls error.message out of an API error body. The
// SDK's Error() also carries the request method and URL, which must not
// reach users.
func anthropicErrorMessage(raw string) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return ""
	}
	return body.Error.Message
}
