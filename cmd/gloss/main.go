package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/redact"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var ece *exitCodeError
	if !errors.As(err, &ece) {
		if apperr.KindOf(err) == "" {
			// Usage errors from cobra (unknown flag, bad arg count).
			ece = exitError(ExitInvalidArgs, "%v", err)
		} else {
			errors.As(exitForError(err), &ece)
		}
	}
	if ece.msg != "" {
		fmt.Fprintln(os.Stderr, redact.String(ece.msg))
	}
	os.Exit(ece.code)
}
