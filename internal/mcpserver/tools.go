// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/gloss/internal/orchestrator"
)

// AnalyzeTextInput is the input schema for the analyze_text tool.
type AnalyzeTextInput struct {
	Text      string `json:"text" jsonschema:"The selected text to explain (at least 10 characters)"`
	URL       string `json:"url,omitempty" jsonschema:"Page the text was selected on"`
	Language  string `json:"language,omitempty" jsonschema:"Language tag such as en, zh, ja; detected when omitted"`
	Prompt    string `json:"prompt,omitempty" jsonschema:"Custom prompt sent verbatim instead of the built-in templates"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Conversation to use (default: the shared default conversation)"`
}

// FollowUpInput is the input schema for the follow_up_question tool.
type FollowUpInput struct {
	Question  string `json:"question" jsonschema:"Question about the current analysis"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Conversation to continue (default: the shared default conversation)"`
}

// SetAPIKeyInput is the input schema for the set_api_key tool.
type SetAPIKeyInput struct {
	APIKey string `json:"api_key" jsonschema:"API key to store for later requests"`
}

// DetectInput is the input schema for the detect_language tool.
type DetectInput struct {
	Text string `json:"text" jsonschema:"Text whose language should be detected"`
}

// NoInput is the input schema of tools without arguments.
type NoInput struct{}

// boolPtr returns a pointer to a bool.
func boolPtr(b bool) *bool { return &b }

type tools struct {
	d orchestrator.Dispatcher
}

// registerTools adds all gloss tools to the MCP server.
func registerTools(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_text",
		Description: "Explain a text selection: translation, key terms and background, answered in Simplified Chinese. Starts a new conversation.",
		Annotations: &mcp.ToolAnnotations{
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(true),
		},
	}, t.analyzeText)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "follow_up_question",
		Description: "Ask a follow-up question about the current analysis, reusing the conversation history.",
		Annotations: &mcp.ToolAnnotations{
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(true),
		},
	}, t.followUp)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_current_analysis",
		Description: "Return the most recent completed analysis, if any.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, t.getCurrentAnalysis)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_api_key",
		Description: "Report whether an API key is stored and its length. The key itself is never returned.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, t.getAPIKey)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_api_key",
		Description: "Store the API key used for completion requests.",
		Annotations: &mcp.ToolAnnotations{
			DestructiveHint: boolPtr(true),
			IdempotentHint:  true,
			OpenWorldHint:   boolPtr(false),
		},
	}, t.setAPIKey)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "test_api_key",
		Description: "Check the configured API key by listing the endpoint's models.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, t.testAPIKey)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "test_full_call",
		Description: "Send a short test completion without touching the current conversation.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, t.testFullCall)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_language",
		Description: "Detect the language of a text with per-language scores and runner-up candidates.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(false),
		},
	}, t.detectLanguage)
}

func (t *tools) analyzeText(ctx context.Context, _ *mcp.CallToolRequest, in AnalyzeTextInput) (*mcp.CallToolResult, any, error) {
	resp, err := t.call(ctx, orchestrator.Request{
		Action:    orchestrator.ActionAnalyzeText,
		Text:      in.Text,
		URL:       in.URL,
		Language:  in.Language,
		Prompt:    in.Prompt,
		SessionID: in.SessionID,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(resp.Result), nil, nil
}

func (t *tools) followUp(ctx context.Context, _ *mcp.CallToolRequest, in FollowUpInput) (*mcp.CallToolResult, any, error) {
	resp, err := t.call(ctx, orchestrator.Request{
		Action:    orchestrator.ActionFollowUpQuestion,
		Question:  in.Question,
		SessionID: in.SessionID,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(resp.Result), nil, nil
}

func (t *tools) getCurrentAnalysis(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	resp, err := t.call(ctx, orchestrator.Request{Action: orchestrator.ActionGetCurrentAnalysis})
	if err != nil {
		return nil, nil, err
	}
	if resp.Analysis == nil {
		return textResult("No analysis yet."), nil, nil
	}
	return jsonResult(resp.Analysis)
}

func (t *tools) getAPIKey(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	resp, err := t.call(ctx, orchestrator.Request{Action: orchestrator.ActionGetAPIKey})
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(map[string]any{
		"hasApiKey":    resp.HasAPIKey != nil && *resp.HasAPIKey,
		"apiKeyLength": deref(resp.APIKeyLength),
	})
}

func (t *tools) setAPIKey(ctx context.Context, _ *mcp.CallToolRequest, in SetAPIKeyInput) (*mcp.CallToolResult, any, error) {
	if _, err := t.call(ctx, orchestrator.Request{Action: orchestrator.ActionSetAPIKey, APIKey: in.APIKey}); err != nil {
		return nil, nil, err
	}
	return textResult("API key saved."), nil, nil
}

func (t *tools) testAPIKey(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	return t.diagnostic(ctx, orchestrator.ActionTestAPIKey)
}

func (t *tools) testFullCall(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
	return t.diagnostic(ctx, orchestrator.ActionTestFullCall)
}

func (t *tools) diagnostic(ctx context.Context, action orchestrator.Action) (*mcp.CallToolResult, any, error) {
	resp := t.d.Handle(ctx, orchestrator.Request{Action: action})
	if resp.Data == nil {
		return nil, nil, errors.New(resp.Error)
	}
	res, _, err := jsonResult(resp.Data)
	if err != nil {
		return nil, nil, err
	}
	res.IsError = !resp.Success
	return res, nil, nil
}

func (t *tools) detectLanguage(ctx context.Context, _ *mcp.CallToolRequest, in DetectInput) (*mcp.CallToolResult, any, error) {
	resp, err := t.call(ctx, orchestrator.Request{Action: orchestrator.ActionDetectLanguage, Text: in.Text})
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(resp.Detection)
}

// call dispatches req and turns a failed envelope into a tool error.
func (t *tools) call(ctx context.Context, req orchestrator.Request) (orchestrator.Response, error) {
	resp := t.d.Handle(ctx, req)
	if !resp.Success {
		return resp, fmt.Errorf("%s: %s", resp.ErrorKind, resp.Error)
	}
	return resp, nil
}

func textResult(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: s},
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return textResult(string(b)), nil, nil
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
