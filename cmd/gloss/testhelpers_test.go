package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/gloss/internal/config"
	"github.com/davetashner/gloss/internal/diagnose"
	"github.com/davetashner/gloss/internal/llm"
)

// newTestCmd returns rootCmd with its output redirected to buffers.
func newTestCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(""))
	return rootCmd, stdout, stderr
}

// resetFlags restores every flag of cmd and its subcommands to its default,
// since the package-level commands keep values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// setupEnv isolates the config directory, clears GLOSS_* variables and routes
// completions to m. It returns the gloss config directory.
func setupEnv(t *testing.T, m *llm.MockProvider) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{config.EnvAPIKey, config.EnvBaseURL, config.EnvModel, config.EnvProvider, config.EnvProxyKey} {
		t.Setenv(k, "")
	}
	resetFlags(rootCmd)
	color.NoColor = true

	origFactory, origProbes, origChecker := providerFactory, networkProbes, keyChecker
	providerFactory = func(*config.Config) llm.Factory { return llm.MockFactory(m, nil) }
	networkProbes = func(string) []diagnose.Probe { return nil }
	keyChecker = func(ctx context.Context, _, _, key string) (int, error) {
		p, err := llm.MockFactory(m, nil)(key)
		if err != nil {
			return 0, err
		}
		models, err := p.ListModels(ctx)
		return len(models), err
	}
	t.Cleanup(func() {
		providerFactory, networkProbes, keyChecker = origFactory, origProbes, origChecker
		resetFlags(rootCmd)
	})
	return filepath.Join(dir, "gloss")
}

// run executes gloss with args and returns stdout, stderr and the error.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd, stdout, stderr := newTestCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// requireExit asserts err carries the given exit code.
func requireExit(t *testing.T, err error, code int) *exitCodeError {
	t.Helper()
	require.Error(t, err)
	var ece *exitCodeError
	require.True(t, errors.As(err, &ece), "want exitCodeError, got %T: %v", err, err)
	assert.Equal(t, code, ece.ExitCode(), "message: %s", ece.Error())
	return ece
}
