// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

// Package apperr defines the typed error taxonomy shared by every gloss
// component. Callers branch on Kind rather than on message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindMissingCredential   Kind = "missing_credential"
	KindInvalidCredential   Kind = "invalid_credential"
	KindRateLimited         Kind = "rate_limited"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindDataShape           Kind = "data_shape"
	KindTimeout             Kind = "timeout"
	KindNetwork             Kind = "network"
	KindUpstream            Kind = "upstream_error"
)

// Error is a classified failure with a user-readable message.
type Error struct {
	// Kind is the failure class.
	Kind Kind

	// Status is the upstream HTTP status, or 0 when no response was received.
	Status int

	// Message is safe to show to an end user.
	Message string

	// Detail carries the upstream error message when one was available.
	Detail string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (upstream: %s)", e.Message, e.Detail)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of the given kind that wraps err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// FromStatus maps a non-2xx HTTP status to an Error. detail is the upstream
// error message; when empty a message is synthesized from the status.
func FromStatus(status int, detail string) *Error {
	e := &Error{Status: status, Detail: detail}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindInvalidCredential
		e.Message = "invalid or expired API key; please verify your API key"
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		e.Message = "too many requests; please retry later (free accounts may have reached their usage limit)"
	case status == http.StatusPaymentRequired:
		e.Kind = KindInsufficientBalance
		e.Message = "insufficient account balance; please check your provider billing"
	case status >= http.StatusInternalServerError:
		e.Kind = KindUpstreamUnavailable
		e.Message = "completion service temporarily unavailable; please retry later"
	default:
		e.Kind = KindUpstream
		e.Message = fmt.Sprintf("API call failed: %d", status)
		if e.Detail == "" {
			e.Detail = fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
		}
	}
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when err
// is nil or unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// NeedsCredentialSetup reports whether err means the credential is missing or
// rejected, in which case a presentation layer should offer credential setup
// instead of a generic error.
func NeedsCredentialSetup(err error) bool {
	switch KindOf(err) {
	case KindMissingCredential, KindInvalidCredential:
		return true
	default:
		return false
	}
}
