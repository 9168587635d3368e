package main

import (
	"fmt"

	"github.com/davetashner/gloss/internal/apperr"
)

// Exit codes for the gloss CLI.
const (
	ExitOK          = 0 // Success.
	ExitInvalidArgs = 1 // Bad arguments, input or configuration.
	ExitUpstream    = 2 // The completion endpoint failed or was unreachable.
	ExitCredential  = 3 // No API key, or the key was rejected.
)

// exitCodeError carries a non-zero exit code through cobra's error handling.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

// exitError creates an exitCodeError. If msg is empty, the error message is
// set to a generic description of the exit code.
func exitError(code int, format string, args ...any) *exitCodeError {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		switch code {
		case ExitUpstream:
			msg = "gloss: request failed"
		case ExitCredential:
			msg = "gloss: API key missing or rejected"
		default:
			msg = "gloss: invalid arguments"
		}
	}
	return &exitCodeError{code: code, msg: msg}
}

// exitCodeFor maps an error kind to an exit code.
func exitCodeFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return ExitInvalidArgs
	case apperr.KindMissingCredential, apperr.KindInvalidCredential:
		return ExitCredential
	default:
		return ExitUpstream
	}
}

// exitForError wraps a classified error with the matching exit code.
func exitForError(err error) error {
	if err == nil {
		return nil
	}
	code := exitCodeFor(apperr.KindOf(err))
	if apperr.NeedsCredentialSetup(err) {
		return exitError(code, "%v\nrun 'gloss key set' to store a key", err)
	}
	return exitError(code, "%v", err)
}
