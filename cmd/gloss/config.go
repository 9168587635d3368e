package main

import (
	"fmt"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/davetashner/gloss/internal/config"
	"github.com/davetashner/gloss/internal/redact"
)

// configCmd is the parent command for config subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and modify gloss configuration",
	Long: `View and modify gloss configuration.

Gloss reads ~/.config/gloss/config.yaml (or $XDG_CONFIG_HOME/gloss), or the
file named by --config. GLOSS_API_KEY, GLOSS_BASE_URL, GLOSS_MODEL,
GLOSS_PROVIDER and GLOSS_PROXY_KEY override the file.

Note: config set does a YAML round-trip and will not preserve comments.
If you need to keep comments, edit the file directly.`,
}

// configShowCmd prints the effective configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  "Print the configuration after environment overrides. The API key is never printed.",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// configPathCmd prints the config file location.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), configFile())
	},
}

// configListCmd lists all configuration values with their source.
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Long: `List every set configuration value, annotated with whether it comes
from the config file or from a GLOSS_* environment variable. Environment
values override the file. Secrets are masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

// configGetCmd retrieves a configuration value by dot-notation key path.
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value by dot-notation key path.

Examples:
  gloss config get model
  gloss config get serve.addr
  gloss config get shared_key`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Values are auto-detected as bool, int, float, or string. The result is
validated before it is written.

Note: This does a YAML round-trip and will not preserve comments.

Examples:
  gloss config set model gpt-4o-mini
  gloss config set timeout 45s
  gloss config set serve.allow_origin chrome-extension://abcdef
  gloss config set shared_key.enabled true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	_, _ = color.New(color.FgCyan).Fprintf(w, "# %s\n", configFile())
	if cfg.APIKey != "" {
		_, _ = color.New(color.FgGreen).Fprintf(w, "# API key set via %s\n", config.EnvAPIKey)
	}
	return config.Write(w, masked(cfg))
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	fileCfg, err := config.Load(configFile())
	if err != nil {
		return exitError(ExitInvalidArgs, "loading config: %v", err)
	}
	fileMap, err := configToFlatMap(masked(fileCfg))
	if err != nil {
		return err
	}
	envMap, err := configToFlatMap(masked(config.FromEnv(nil)))
	if err != nil {
		return err
	}

	seen := make(map[string]string, len(fileMap)+len(envMap))
	values := make(map[string]any, len(fileMap)+len(envMap))
	for k, v := range fileMap {
		seen[k], values[k] = "file", v
	}
	for k, v := range envMap {
		seen[k], values[k] = "env", v
	}

	if len(seen) == 0 {
		_, _ = fmt.Fprintln(w, "No configuration set.")
		_, _ = fmt.Fprintln(w, "Run 'gloss config set <key> <value>' to set values.")
		return nil
	}

	fileColor := color.New(color.FgCyan)
	envColor := color.New(color.FgGreen)
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "%s = %v %s\n", k, values[k], formatSource(seen[k], fileColor, envColor))
	}
	return nil
}

// masked returns a copy of cfg with secrets replaced by their masked form.
func masked(cfg *config.Config) *config.Config {
	out := *cfg
	out.Proxy.Key = redact.Mask(out.Proxy.Key)
	out.SharedKey.Key = redact.Mask(out.SharedKey.Key)
	return &out
}

// configToFlatMap converts a Config to a flat dot-notation map, omitting zero values.
func configToFlatMap(cfg *config.Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return map[string]any{}, nil
	}
	return config.FlattenMap(m, ""), nil
}

// formatSource returns a colorized source annotation.
func formatSource(source string, fileColor, envColor *color.Color) string {
	switch source {
	case "file":
		return fileColor.Sprintf("(file)")
	case "env":
		return envColor.Sprintf("(env)")
	default:
		return fmt.Sprintf("(%s)", source)
	}
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	val, err := config.GetValue(cfg, args[0])
	if err != nil {
		return err
	}
	return printValue(cmd, val)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	keyPath := args[0]
	rawValue := args[1]

	if err := config.ValidateKeyPath(keyPath); err != nil {
		return exitError(ExitInvalidArgs, "%v", err)
	}

	targetPath := configFile()
	data, err := config.LoadRaw(targetPath)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}

	if err := config.SetValue(data, keyPath, rawValue); err != nil {
		return fmt.Errorf("setting value: %w", err)
	}

	// Round-trip validate: unmarshal to Config and validate.
	roundTrip, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	var validCfg config.Config
	if err := yaml.Unmarshal(roundTrip, &validCfg); err != nil {
		return exitError(ExitInvalidArgs, "invalid config after set: %v", err)
	}
	if err := config.Validate(&validCfg); err != nil {
		return exitError(ExitInvalidArgs, "%v", err)
	}

	if err := config.WriteFile(targetPath, data); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", keyPath, rawValue)
	return nil
}

// printValue outputs a value: scalars as plain text, maps/slices as YAML.
func printValue(cmd *cobra.Command, val any) error {
	switch v := val.(type) {
	case map[string]any, []any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), string(data))
	default:
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}
