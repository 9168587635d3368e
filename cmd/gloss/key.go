package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davetashner/gloss/internal/config"
	"github.com/davetashner/gloss/internal/credential"
	"github.com/davetashner/gloss/internal/redact"
)

// keyCmd is the parent command for API key management.
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored API key",
	Long: `Manage the API key used for completion requests.

Keys are resolved in this order: --api-key on the command line, the
GLOSS_API_KEY environment variable, the stored key, then the shared key
when shared_key.enabled is set. The stored key lives in
~/.config/gloss/credentials.json, readable only by you.`,
}

// keySetCmd stores a key.
var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store an API key",
	Long: `Store an API key. When the key is omitted it is read from the first line
of stdin, which keeps it out of shell history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKeySet,
}

// keyStatusCmd reports which key would be used.
var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a key is stored and which key is active",
	Args:  cobra.NoArgs,
	RunE:  runKeyStatus,
}

// keyClearCmd removes the stored key.
var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runKeyClear,
}

func init() {
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyStatusCmd)
	keyCmd.AddCommand(keyClearCmd)
}

func runKeySet(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		if scanner.Scan() {
			key = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.orch.SetAPIKey(key); err != nil {
		return exitForError(err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "API key saved (%s)\n", redact.Mask(strings.TrimSpace(key)))
	return nil
}

func runKeyStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if has, n := a.resolver.HasStored(); has {
		_, _ = fmt.Fprintf(w, "stored: yes (%d characters) in %s\n", n, credential.NewFileStore(config.Dir()).Path())
	} else {
		_, _ = fmt.Fprintln(w, "stored: no")
	}

	cred, ok := a.resolver.Resolve(cmd.Context(), "")
	if !ok {
		_, _ = fmt.Fprintln(w, "active: none")
		return exitError(ExitCredential, "no API key configured; run 'gloss key set'")
	}
	_, _ = fmt.Fprintf(w, "active: %s (%s)\n", redact.Mask(cred.Key), cred.Source)
	return nil
}

func runKeyClear(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.resolver.Store().Delete(credential.KeyName); err != nil {
		return fmt.Errorf("removing key: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "API key removed")
	return nil
}
