// Copyright 2026 The Gloss Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/davetashner/gloss/internal/bootstrap"
	"github.com/davetashner/gloss/internal/config"
	"github.com/davetashner/gloss/internal/credential"
)

// Init-specific flag values.
var (
	initForce       bool
	initInteractive bool
	initProject     string
)

// keyChecker validates the key entered in the wizard. Tests replace it.
var keyChecker bootstrap.KeyChecker = bootstrap.ListModelsChecker

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration",
	Long: `Write a starter config.yaml, optionally store an API key, and register
the gloss MCP server in .mcp.json when the project directory has a .claude/
folder.

This command is non-destructive by default: it skips a config file that
already exists. Use --force to regenerate it. With --interactive, gloss asks
for the provider, model and key, and checks the key before storing it.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config.yaml")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "prompt for provider, model and API key")
	initCmd.Flags().StringVar(&initProject, "project", ".", "directory whose .mcp.json registers gloss (empty to skip)")
}

func runInit(cmd *cobra.Command, _ []string) error {
	var project string
	if initProject != "" {
		abs, err := filepath.Abs(initProject)
		if err != nil {
			return exitError(ExitInvalidArgs, "gloss: cannot resolve path %q (%v)", initProject, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return exitError(ExitInvalidArgs, "gloss: %q is not a directory", initProject)
		}
		project = abs
	}

	choices := bootstrap.DefaultChoices()
	if initInteractive {
		var err error
		choices, err = bootstrap.RunWizard(cmd.Context(), cmd.InOrStdin(), cmd.ErrOrStderr(), keyChecker)
		if err != nil {
			return exitError(ExitInvalidArgs, "gloss: %v", err)
		}
	}

	path := configFile()
	slog.Info("initializing gloss", "config", path, "project", project)

	result, err := bootstrap.Run(bootstrap.InitConfig{
		ConfigPath: path,
		ProjectDir: project,
		Force:      initForce,
		Choices:    choices,
		Store:      credential.NewFileStore(config.Dir()),
	})
	if err != nil {
		return exitError(ExitInvalidArgs, "gloss: init failed (%v)", err)
	}

	w := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	dim := color.New(color.Faint)

	_, _ = bold.Fprintln(w, "gloss init complete")
	_, _ = fmt.Fprintln(w)

	for _, a := range result.Actions {
		var prefix string
		switch a.Operation {
		case "created":
			prefix = green.Sprint("  + ")
		case "updated":
			prefix = yellow.Sprint("  ~ ")
		default:
			prefix = dim.Sprint("  - ")
		}
		_, _ = fmt.Fprintf(w, "%s%-18s %s\n", prefix, a.File, dim.Sprintf("(%s)", a.Description))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "Next steps:")
	if choices.APIKey == "" {
		_, _ = fmt.Fprintln(w, "  1. Store a key: gloss key set")
	} else {
		_, _ = fmt.Fprintln(w, "  1. Check the setup: gloss diagnose")
	}
	_, _ = fmt.Fprintln(w, `  2. Try it: gloss analyze "Bonjour tout le monde, comment allez-vous ?"`)
	return nil
}
