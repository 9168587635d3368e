package main

import (
	"github.com/spf13/cobra"

	"github.com/davetashner/gloss/internal/config"
	"github.com/davetashner/gloss/internal/proxy"
	"github.com/davetashner/gloss/internal/quota"
)

// Proxy command flags.
var (
	proxyAddr     string
	proxyUpstream string
	proxyDailyCap int
)

// proxyCmd runs the shared-key relay.
var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Relay completions to an upstream endpoint with a shared key",
	Long: `Run an OpenAI-compatible relay that forwards chat completions and model
listings to the upstream endpoint with a key held only by the relay.
Clients point base_url at the relay and may use any placeholder key.

Completions are capped per UTC day (proxy.daily_cap, default 100); once the
cap is spent the relay answers 429 until the next day.

The upstream key is read from GLOSS_PROXY_KEY or proxy.key.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Proxy.Key == "" {
			return exitError(ExitCredential, "the relay needs an upstream key; set %s", config.EnvProxyKey)
		}

		dailyCap := cfg.Proxy.DailyCap
		if cmd.Flags().Changed("daily-cap") {
			dailyCap = proxyDailyCap
		}
		relay, err := proxy.New(firstNonEmpty(proxyUpstream, cfg.ProxyUpstream()), cfg.Proxy.Key, quota.NewCounter(dailyCap))
		if err != nil {
			return exitError(ExitInvalidArgs, "%v", err)
		}
		return listenAndServe(cmd.Context(), cmd.ErrOrStderr(), "proxy", firstNonEmpty(proxyAddr, cfg.ProxyAddr()), relay)
	},
}

func init() {
	proxyCmd.Flags().StringVar(&proxyAddr, "addr", "", "listen address (default 127.0.0.1:8788)")
	proxyCmd.Flags().StringVar(&proxyUpstream, "upstream", "", "upstream base URL (default https://api.openai.com/v1)")
	proxyCmd.Flags().IntVar(&proxyDailyCap, "daily-cap", 0, "completions allowed per UTC day")
}
