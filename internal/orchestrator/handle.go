// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/conversation"
	"github.com/davetashner/gloss/internal/langdetect"
	"github.com/davetashner/gloss/internal/redact"
)

// Handle dispatches req by action. Failures are reported in the envelope;
// Handle never returns a raw error.
func (o *Orchestrator) Handle(ctx context.Context, req Request) Response {
	slog.DebugContext(ctx, "handling action", "action", req.Action, "session", req.SessionID)

	switch req.Action {
	case ActionAnalyzeText:
		a, err := o.Analyze(ctx, AnalyzeInput{
			Text:      req.Text,
			URL:       req.URL,
			Language:  langdetect.Tag(strings.TrimSpace(req.Language)),
			Prompt:    req.Prompt,
			APIKey:    req.APIKey,
			SessionID: req.SessionID,
		})
		if err != nil {
			return failure(ctx, req.Action, err)
		}
		return Response{Success: true, Result: a.Result, SessionID: sessionID(req.SessionID)}

	case ActionFollowUpQuestion:
		result, err := o.FollowUp(ctx, FollowUpInput{
			Question:  req.Question,
			APIKey:    req.APIKey,
			SessionID: req.SessionID,
		})
		if err != nil {
			return failure(ctx, req.Action, err)
		}
		return Response{Success: true, Result: result, SessionID: sessionID(req.SessionID)}

	case ActionSetAPIKey:
		if err := o.SetAPIKey(req.APIKey); err != nil {
			return failure(ctx, req.Action, err)
		}
		return Response{Success: true}

	case ActionGetAPIKey:
		has, n := o.APIKeyStatus()
		return Response{Success: true, HasAPIKey: &has, APIKeyLength: &n}

	case ActionGetCurrentAnalysis:
		return Response{Success: true, Analysis: o.CurrentAnalysis()}

	case ActionTestAPIKey:
		d, err := o.requireDiagnoser()
		if err != nil {
			return failure(ctx, req.Action, err)
		}
		check := d.TestAPIKey(ctx)
		if !check.Success {
			return Response{Error: check.Error, ErrorKind: check.ErrorKind, Data: check}
		}
		return Response{Success: true, Data: check}

	case ActionTestFullCall:
		d, err := o.requireDiagnoser()
		if err != nil {
			return failure(ctx, req.Action, err)
		}
		call := d.TestFullCall(ctx)
		if !call.Success {
			return Response{Error: call.Error, ErrorKind: call.ErrorKind, Data: call}
		}
		return Response{Success: true, Data: call}

	case ActionDetectLanguage:
		text := strings.TrimSpace(req.Text)
		if text == "" {
			return failure(ctx, req.Action, apperr.New(apperr.KindValidation, "text must not be empty"))
		}
		res := langdetect.Detect(text)
		return Response{Success: true, Result: string(res.Language), Detection: &res}

	case ActionResetConversation:
		o.ResetConversation(req.SessionID)
		return Response{Success: true, SessionID: sessionID(req.SessionID)}

	default:
		return failure(ctx, req.Action, apperr.New(apperr.KindValidation, "unknown action %q", req.Action))
	}
}

func failure(ctx context.Context, action Action, err error) Response {
	kind := apperr.KindOf(err)
	if kind == "" {
		kind = apperr.KindUpstream
	}
	msg := redact.String(err.Error())
	slog.DebugContext(ctx, "action failed", "action", action, "kind", kind, "error", msg)
	return Response{Error: msg, ErrorKind: kind}
}

func sessionID(id string) string {
	if id == "" {
		return conversation.DefaultID
	}
	return id
}
