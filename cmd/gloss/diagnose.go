// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/diagnose"
)

var diagnoseJSON bool

// diagnoseCmd runs connectivity and credential checks.
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [key|call|network|all]",
	Short: "Check the API key, the network and a test completion",
	Long: `Run diagnostics against the configured completion endpoint.

  key      list the endpoint's models with the active key
  call     send a short test completion outside any conversation
  network  probe general reachability and the endpoint's host
  all      everything above, with suggested fixes (default)

The exit code is non-zero when a check fails.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"key", "call", "network", "all"},
	RunE:      runDiagnose,
}

func init() {
	diagnoseCmd.Flags().BoolVar(&diagnoseJSON, "json", false, "print results as JSON")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	which := "all"
	if len(args) == 1 {
		which = args[0]
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	d := a.orch.Diagnoser()
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	switch which {
	case "key":
		check := d.TestAPIKey(ctx)
		if err := emit(w, check, func() { printKeyCheck(w, check) }); err != nil {
			return err
		}
		return checkFailed(check.Success, check.ErrorKind, check.Error)
	case "call":
		check := d.TestFullCall(ctx)
		if err := emit(w, check, func() { printCallCheck(w, check) }); err != nil {
			return err
		}
		return checkFailed(check.Success, check.ErrorKind, check.Error)
	case "network":
		probes := d.TestNetwork(ctx)
		if err := emit(w, probes, func() { printProbes(w, probes) }); err != nil {
			return err
		}
		for _, p := range probes {
			if p.Endpoint && !p.Success {
				return exitError(ExitUpstream, "%s unreachable: %s", p.URL, p.Error)
			}
		}
		return nil
	default:
		diag := d.FullDiagnosis(ctx)
		if err := emit(w, diag, func() { diagnose.Report(w, diag) }); err != nil {
			return err
		}
		if len(diagnose.Suggestions(diag)) > 0 {
			if !diag.APIKey.Success {
				return exitError(exitCodeFor(diag.APIKey.ErrorKind), "diagnosis found problems")
			}
			return exitError(ExitUpstream, "diagnosis found problems")
		}
		return nil
	}
}

// emit writes v as JSON when --json is set and calls text otherwise.
func emit(w io.Writer, v any, text func()) error {
	if !diagnoseJSON {
		text()
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func checkFailed(ok bool, kind apperr.Kind, msg string) error {
	if ok {
		return nil
	}
	return exitError(exitCodeFor(kind), "%s", msg)
}

func printKeyCheck(w io.Writer, c diagnose.KeyCheck) {
	if !c.Success {
		_, _ = fmt.Fprintf(w, "API key: FAILED - %s\n", c.Error)
		return
	}
	_, _ = fmt.Fprintf(w, "API key: OK (%s, %s)\n", c.KeyPrefix, c.KeySource)
	_, _ = fmt.Fprintf(w, "  models visible: %d, %s available: %t\n", c.ModelCount, c.Model, c.HasModel)
}

func printCallCheck(w io.Writer, c diagnose.CallCheck) {
	if !c.Success {
		_, _ = fmt.Fprintf(w, "Completion call: FAILED - %s\n", c.Error)
		return
	}
	_, _ = fmt.Fprintf(w, "Completion call: OK (%d characters)\n", c.ResultLength)
	_, _ = fmt.Fprintln(w, c.Result)
}

func printProbes(w io.Writer, probes []diagnose.ProbeResult) {
	for _, p := range probes {
		if p.Success {
			_, _ = fmt.Fprintf(w, "%s: OK (%dms)\n", p.Name, p.DurationMS)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: FAILED - %s\n", p.Name, p.Error)
	}
}
