// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/langdetect"
	"github.com/davetashner/gloss/internal/orchestrator"
	"github.com/davetashner/gloss/internal/output"
	"github.com/davetashner/gloss/internal/prompt"
	"github.com/davetashner/gloss/internal/redact"
)

// Analyze command flags.
var (
	analyzeLanguage    string
	analyzeAPIKey      string
	analyzeURL         string
	analyzePrompt      string
	analyzePanel       bool
	analyzeInteractive bool
	analyzeFormat      string
	analyzeSave        bool
)

// analyzeCmd explains a piece of text.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text|-]",
	Short: "Explain a piece of text",
	Long: `Explain a piece of text: a translation, the key terms and the background
needed to understand it, answered in Simplified Chinese.

The text is read from stdin when omitted or given as "-". Selections shorter
than 10 characters are rejected and longer ones are cut at 4000.

With --follow-up, gloss keeps reading questions from stdin after the answer
and asks each within the same conversation. An empty line ends the session.

Nothing is written to disk unless --save is given or cli.persist_session is
set in the config file. A saved conversation can be continued later with
'gloss ask' and shown again with 'gloss last'.

Examples:
  gloss analyze "The quick brown fox jumps over the lazy dog."
  pbpaste | gloss analyze
  gloss analyze --language ja "吾輩は猫である。名前はまだ無い。"
  gloss analyze -i "Ceci n'est pas une pipe, dit le tableau."
  gloss analyze -f markdown "Der Weg ist das Ziel, sagt man oft."`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeLanguage, "language", "l", "", "language tag of the text (detected when omitted)")
	f.StringVar(&analyzeAPIKey, "api-key", "", "API key for this request only")
	f.StringVar(&analyzeURL, "url", "", "page the text came from")
	f.StringVar(&analyzePrompt, "prompt", "", "custom prompt sent instead of the built-in templates")
	f.BoolVar(&analyzePanel, "panel", false, "use the compact answer format")
	f.BoolVarP(&analyzeInteractive, "follow-up", "i", false, "ask follow-up questions read from stdin")
	f.StringVarP(&analyzeFormat, "format", "f", "text", "output format: text, json or markdown")
	f.BoolVar(&analyzeSave, "save", false, "save the analysis and conversation for 'gloss ask' and 'gloss last'")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, fromStdin, err := readText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if analyzeInteractive && fromStdin {
		return exitError(ExitInvalidArgs, "--follow-up reads questions from stdin; pass the text as an argument")
	}
	lang, err := parseLanguage(analyzeLanguage)
	if err != nil {
		return err
	}
	formatter, err := output.GetFormatter(analyzeFormat)
	if err != nil {
		return exitError(ExitInvalidArgs, "%v", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	custom := analyzePrompt
	if analyzePanel && custom == "" {
		prepared, err := orchestrator.PrepareText(text)
		if err != nil {
			return exitForError(err)
		}
		if lang == "" {
			lang = langdetect.Detect(prepared).Language
		}
		custom = prompt.PanelPrompt(prepared, lang)
	}

	ctx := cmd.Context()
	analysis, err := a.orch.Analyze(ctx, orchestrator.AnalyzeInput{
		Text:     text,
		URL:      analyzeURL,
		Language: lang,
		Prompt:   custom,
		APIKey:   analyzeAPIKey,
	})
	if err != nil {
		return exitForError(err)
	}
	a.persist = analyzeSave || a.cfg.CLI.PersistSession
	a.saveSession()

	if err := formatter.Format(analysis, cmd.OutOrStdout()); err != nil {
		return err
	}

	if !analyzeInteractive {
		return nil
	}
	return followUpLoop(ctx, cmd, a, analyzeAPIKey)
}

// readText returns the single argument, or all of r when there is none or
// it is "-".
func readText(r io.Reader, args []string) (string, bool, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], false, nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", true, fmt.Errorf("reading stdin: %w", err)
	}
	return string(b), true, nil
}

// followUpLoop asks one question per stdin line until an empty line, "exit"
// or EOF, sending apiKey with each when set. A failed question is reported
// and the loop continues, unless the key is missing or rejected.
func followUpLoop(ctx context.Context, cmd *cobra.Command, a *app, apiKey string) error {
	w, errw := cmd.OutOrStdout(), cmd.ErrOrStderr()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		_, _ = fmt.Fprint(errw, "\n? ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" || q == "exit" || q == "quit" {
			return nil
		}
		answer, err := a.orch.FollowUp(ctx, orchestrator.FollowUpInput{Question: q, APIKey: apiKey})
		if apperr.NeedsCredentialSetup(err) {
			return exitForError(err)
		}
		if err != nil {
			_, _ = fmt.Fprintln(errw, redact.String(err.Error()))
			continue
		}
		a.saveSession()
		_, _ = fmt.Fprintln(w, answer)
	}
}
