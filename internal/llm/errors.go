// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/url"

	"github.com/davetashner/gloss/internal/apperr"
)

// classifyContext reports a timeout or cancellation, or nil if ctx is
// still live and err is not a context error.
func classifyContext(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, err, "request timed out; please check your network connection")
	}
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.KindNetwork, err, "request was cancelled")
	}
	return nil
}

// classifyTransport maps errors that carry no HTTP status.
func classifyTransport(err error) error {
	var already *apperr.Error
	if errors.As(err, &already) {
		return err
	}

	var (
		urlErr *url.Error
		netErr net.Error
	)
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return apperr.Wrap(apperr.KindNetwork, err, "network error; cannot reach the completion service")
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return apperr.Wrap(apperr.KindDataShape, err, "completion response could not be decoded")
	}

	return apperr.Wrap(apperr.KindUpstream, err, "API call failed: %v", err)
}
