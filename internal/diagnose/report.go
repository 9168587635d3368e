// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package diagnose

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

var (
	colorRed   = color.New(color.FgRed)
	colorGreen = color.New(color.FgGreen)
	colorBold  = color.New(color.Bold)
)

func status(ok bool) string {
	if ok {
		return colorGreen.Sprint("OK")
	}
	return colorRed.Sprint("FAILED")
}

// Suggestions returns the follow-up actions the diagnosis points to.
func Suggestions(diag Diagnosis) []string {
	var out []string
	if !diag.APIKey.Success {
		out = append(out, "Check and re-set your API key (gloss key set).")
	}
	endpointOK := true
	for _, p := range diag.Network {
		if p.Endpoint && !p.Success {
			endpointOK = false
		}
	}
	if !endpointOK {
		out = append(out, "Check your network connection; the completion endpoint may need a proxy or VPN.")
	}
	if diag.APIKey.Success && endpointOK && diag.FullCall != nil && !diag.FullCall.Success {
		out = append(out, "The key works but a completion failed; check the configured model and base URL.")
	}
	return out
}

// Report writes a human-readable diagnosis to w.
func Report(w io.Writer, diag Diagnosis) {
	_, _ = colorBold.Fprintln(w, "gloss diagnosis")
	fmt.Fprintf(w, "Time: %s\n\n", diag.Timestamp.Format(time.DateTime))

	fmt.Fprintf(w, "API key:  %s", status(diag.APIKey.Success))
	if diag.APIKey.KeyPrefix != "" {
		fmt.Fprintf(w, " (%s, %s)", diag.APIKey.KeyPrefix, diag.APIKey.KeySource)
	}
	fmt.Fprintln(w)
	if diag.APIKey.Success {
		fmt.Fprintf(w, "  models visible: %d, %s available: %t\n", diag.APIKey.ModelCount, diag.APIKey.Model, diag.APIKey.HasModel)
	} else {
		fmt.Fprintf(w, "  error: %s\n", diag.APIKey.Error)
	}

	fmt.Fprintln(w, "Network:")
	for _, p := range diag.Network {
		fmt.Fprintf(w, "  %s: %s", p.Name, status(p.Success))
		if p.Success {
			fmt.Fprintf(w, " (%dms)", p.DurationMS)
		} else {
			fmt.Fprintf(w, " - %s", p.Error)
		}
		fmt.Fprintln(w)
	}

	if diag.FullCall != nil {
		fmt.Fprintf(w, "Completion call: %s\n", status(diag.FullCall.Success))
		if !diag.FullCall.Success {
			fmt.Fprintf(w, "  error: %s\n", diag.FullCall.Error)
		}
	}

	if s := Suggestions(diag); len(s) > 0 {
		fmt.Fprintln(w)
		_, _ = colorBold.Fprintln(w, "Suggested actions:")
		for i, line := range s {
			fmt.Fprintf(w, "%d. %s\n", i+1, line)
		}
	}
}
