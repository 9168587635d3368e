package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	glosslog "github.com/davetashner/gloss/internal/log"
)

// Global flag values.
var (
	verbose    bool
	quiet      bool
	noColor    bool
	logJSON    bool
	configPath string
)

// rootCmd is the base command for gloss.
var rootCmd = &cobra.Command{
	Use:   "gloss",
	Short: "Explain selected text with a chat-completion model",
	Long: `Gloss explains a piece of selected text: it detects the language,
builds a language-specific prompt and asks a chat-completion endpoint for a
translation, the key terms and their background, answered in Simplified
Chinese. Follow-up questions continue the same conversation.

The same engine is served to a browser extension over HTTP (gloss serve)
and to agents over MCP (gloss mcp serve).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if noColor {
			color.NoColor = true
		}
		if logJSON {
			glosslog.SetupJSON(verbose, quiet)
			return
		}
		glosslog.Setup(verbose, quiet)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/gloss/config.yaml)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(lastCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(proxyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
