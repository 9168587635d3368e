// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/davetashner/gloss/internal/config"
	"github.com/davetashner/gloss/internal/orchestrator"
	"github.com/davetashner/gloss/internal/output"
	"github.com/davetashner/gloss/internal/state"
)

// Session command flags.
var (
	lastFormat string
	askAPIKey  string
)

// askCmd continues the saved conversation.
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a follow-up question about the last analysis",
	Long: `Ask a follow-up question within the conversation saved by the last
'gloss analyze --save' (or with cli.persist_session set). The previous
questions and answers are sent along and the saved conversation is updated.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// lastCmd prints the saved analysis.
var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Print the last saved analysis",
	Args:  cobra.NoArgs,
	RunE:  runLast,
}

// resetCmd forgets the saved conversation.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the last analysis and its conversation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := state.Clear(config.Dir()); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Conversation cleared")
		return nil
	},
}

func init() {
	lastCmd.Flags().StringVarP(&lastFormat, "format", "f", "text", "output format: text, json or markdown")
	askCmd.Flags().StringVar(&askAPIKey, "api-key", "", "API key for this request only")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.restoreSession(); err != nil {
		return err
	}
	if a.orch.CurrentAnalysis() == nil {
		return exitError(ExitInvalidArgs, "nothing to follow up on; run 'gloss analyze --save' first")
	}
	a.persist = true

	question := args[0]
	for _, arg := range args[1:] {
		question += " " + arg
	}
	answer, err := a.orch.FollowUp(cmd.Context(), orchestrator.FollowUpInput{Question: question, APIKey: askAPIKey})
	if err != nil {
		return exitForError(err)
	}
	a.saveSession()
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

func runLast(cmd *cobra.Command, _ []string) error {
	formatter, err := output.GetFormatter(lastFormat)
	if err != nil {
		return exitError(ExitInvalidArgs, "%v", err)
	}
	snap, err := state.Load(config.Dir())
	if err != nil {
		return err
	}
	if snap == nil || snap.Analysis == nil {
		return exitError(ExitInvalidArgs, "no saved analysis; run 'gloss analyze --save' first")
	}
	return formatter.Format(snap.Analysis, cmd.OutOrStdout())
}

// restoreSession loads the saved conversation into the orchestrator.
func (a *app) restoreSession() error {
	snap, err := state.Load(config.Dir())
	if err != nil {
		return fmt.Errorf("loading saved conversation: %w", err)
	}
	state.Restore(a.orch, snap)
	return nil
}

// saveSession persists the orchestrator's conversation when a.persist is
// set. Failure only costs the ability to continue later, so it is logged
// rather than returned.
func (a *app) saveSession() {
	if !a.persist {
		return
	}
	if err := state.Save(config.Dir(), state.Capture(a.orch, time.Now())); err != nil {
		slog.Warn("could not save conversation", "error", err)
	}
}
