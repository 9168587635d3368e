// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package bootstrap

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/davetashner/gloss/internal/llm"
	"github.com/davetashner/gloss/internal/redact"
)

// validateTimeout bounds the key check made by the wizard.
const validateTimeout = 10 * time.Second

// WizardResult holds the user's choices from the interactive wizard.
type WizardResult struct {
	Provider string
	BaseURL  string
	Model    string
	Timeout  string
	APIKey   string
	KeyValid bool
	Models   int // models visible to the key, when validated
}

// DefaultChoices returns what the wizard picks when every prompt is skipped.
func DefaultChoices() *WizardResult {
	return &WizardResult{
		Provider: llm.ProviderOpenAI,
		Timeout:  "30s",
	}
}

// KeyChecker validates key against a backend and reports how many models it
// can see.
type KeyChecker func(ctx context.Context, provider, baseURL, key string) (int, error)

// ListModelsChecker checks a key by listing models on the chosen backend.
func ListModelsChecker(ctx context.Context, provider, baseURL, key string) (int, error) {
	opts := []llm.Option{llm.WithAPIKey(key)}
	if baseURL != "" {
		opts = append(opts, llm.WithBaseURL(baseURL))
	}
	p, err := llm.NewProvider(provider, opts...)
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()
	models, err := p.ListModels(ctx)
	if err != nil {
		return 0, err
	}
	return len(models), nil
}

// RunWizard runs the interactive init wizard. A nil check stores the key
// without validating it.
func RunWizard(ctx context.Context, r io.Reader, w io.Writer, check KeyChecker) (*WizardResult, error) {
	scanner := bufio.NewScanner(r)
	result := DefaultChoices()

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Welcome to gloss init!")
	_, _ = fmt.Fprintln(w)

	// 1. Backend.
	for {
		_, _ = fmt.Fprintf(w, "  Provider (%s or %s) [%s]: ", llm.ProviderOpenAI, llm.ProviderAnthropic, result.Provider)
		p := strings.ToLower(promptString(scanner, result.Provider))
		if p == llm.ProviderOpenAI || p == llm.ProviderAnthropic {
			result.Provider = p
			break
		}
		_, _ = fmt.Fprintf(w, "  Unknown provider %q.\n", p)
	}

	if result.Provider == llm.ProviderOpenAI {
		_, _ = fmt.Fprintf(w, "  Base URL for an OpenAI-compatible endpoint (Enter for api.openai.com): ")
		result.BaseURL = promptString(scanner, "")
	}

	defModel := llm.DefaultOpenAIModel
	if result.Provider == llm.ProviderAnthropic {
		defModel = llm.DefaultAnthropicModel
	}
	_, _ = fmt.Fprintf(w, "  Model [%s]: ", defModel)
	if m := promptString(scanner, defModel); m != defModel {
		result.Model = m
	}

	_, _ = fmt.Fprintf(w, "  Request timeout in seconds [30]: ")
	if v := promptInt(scanner, 30); v > 0 {
		result.Timeout = fmt.Sprintf("%ds", v)
	}
	_, _ = fmt.Fprintln(w)

	// 2. Key.
	_, _ = fmt.Fprintf(w, "  API key (Enter to skip): ")
	result.APIKey = promptString(scanner, "")
	if result.APIKey == "" {
		_, _ = fmt.Fprintln(w, "  Skipped. Run 'gloss key set' later.")
		_, _ = fmt.Fprintln(w)
		return result, nil
	}
	redact.Register(result.APIKey)

	if check != nil {
		_, _ = fmt.Fprintf(w, "  Validating key... ")
		n, err := check(ctx, result.Provider, result.BaseURL, result.APIKey)
		if err != nil {
			_, _ = fmt.Fprintf(w, "failed: %s\n", redact.String(err.Error()))
			_, _ = fmt.Fprintf(w, "  Store it anyway? [y/N] ")
			if !promptYesNo(scanner, false) {
				result.APIKey = ""
				_, _ = fmt.Fprintln(w, "  Key discarded.")
			}
		} else {
			result.KeyValid = true
			result.Models = n
			_, _ = fmt.Fprintf(w, "valid! (%d models)\n", n)
		}
	}

	_, _ = fmt.Fprintln(w)
	return result, nil
}

// promptYesNo reads a yes/no response. Empty input returns the default.
func promptYesNo(scanner *bufio.Scanner, defaultVal bool) bool {
	if !scanner.Scan() {
		return defaultVal
	}
	input := strings.TrimSpace(strings.ToLower(scanner.Text()))
	switch input {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return defaultVal
	}
}

// promptString reads a string response. Empty input returns the default.
func promptString(scanner *bufio.Scanner, defaultVal string) string {
	if !scanner.Scan() {
		return defaultVal
	}
	input := strings.TrimSpace(scanner.Text())
	if input == "" {
		return defaultVal
	}
	return input
}

// promptInt reads an integer response. Empty or invalid input returns the default.
func promptInt(scanner *bufio.Scanner, defaultVal int) int {
	if !scanner.Scan() {
		return defaultVal
	}
	input := strings.TrimSpace(scanner.Text())
	if input == "" {
		return defaultVal
	}
	var v int
	if _, err := fmt.Sscanf(input, "%d", &v); err != nil {
		return defaultVal
	}
	return v
}
