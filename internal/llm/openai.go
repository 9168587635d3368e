// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/davetashner/gloss/internal/apperr"
)

// DefaultOpenAIModel is the model used when no override is provided.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider implements Provider against any OpenAI-compatible chat
// completions endpoint.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	baseURL string
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a provider. It returns a missing-credential
// error if no API key was given.
func NewOpenAIProvider(opts ...Option) (*OpenAIProvider, error) {
	o := options{model: DefaultOpenAIModel}
	for _, opt := range opts {
		opt(&o)
	}
	if o.apiKey == "" {
		return nil, apperr.New(apperr.KindMissingCredential, "no API key configured")
	}

	cfg := openai.DefaultConfig(o.apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(cfg),
		model:   o.model,
		baseURL: cfg.BaseURL,
	}, nil
}

// Complete sends a chat completion request.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	creq := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  msgs,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		creq.Temperature = float32(*req.Temperature)
	}

	resp, err := p.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return nil, classifyOpenAI(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperr.New(apperr.KindDataShape, "completion response has no choices")
	}
	choice := resp.Choices[0]
	if choice.Message.Content == "" {
		return nil, apperr.New(apperr.KindDataShape, "completion response has an empty message")
	}

	return &Response{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// ListModels lists the models the key can see.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, classifyOpenAI(ctx, err)
	}
	out := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, m.ID)
	}
	return out, nil
}

// Model returns the default model configured for this provider.
func (p *OpenAIProvider) Model() string { return p.model }

// BaseURL returns the endpoint root requests are sent to.
func (p *OpenAIProvider) BaseURL() string { return p.baseURL }

func classifyOpenAI(ctx context.Context, err error) error {
	if c := classifyContext(ctx, err); c != nil {
		return c
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		e := apperr.FromStatus(apiErr.HTTPStatusCode, apiErr.Message)
		e.Err = err
		return e
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		// The error body could not be parsed; keep a synthesized message.
		e := apperr.FromStatus(reqErr.HTTPStatusCode, "")
		e.Err = err
		return e
	}

	return classifyTransport(err)
}
