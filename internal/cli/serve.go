package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/agent"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/catalog"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/config"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/gateway"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/llm"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/logging"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/spokecalc"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/version"
)

const defaultConfigPath = "shoptech.yaml"

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat agent server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Local development keeps credentials in .env; missing file is fine.
			_ = godotenv.Load()

			path := cfgFile
			if path == "" {
				path = defaultConfigPath
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}

			log, closer, err := logging.Open(cfg.Logging.Level, cfg.Logging.ConsoleStyle, cfg.Logging.File)
			if err != nil {
				return fmt.Errorf("opening log output: %w", err)
			}
			if closer != nil {
				defer closer.Close()
			}

			issues := config.Validate(&cfg)
			for _, issue := range issues {
				if issue.Fatal {
					log.Error().Str("field", issue.Field).Msg(issue.Message)
				} else {
					log.Warn().Str("field", issue.Field).Msg(issue.Message)
				}
			}
			if config.HasFatal(issues) {
				return fmt.Errorf("config validation failed")
			}

			log.Info().Str("version", version.Info()).Msg("starting shop tech agent")

			client := llm.NewOpenAIClient(llm.OpenAIConfig{
				APIKey:  cfg.OpenAI.APIKey,
				Model:   cfg.OpenAI.Model,
				BaseURL: cfg.OpenAI.BaseURL,
				Timeout: time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
			}, log)

			cat := catalog.NewShopifyClient(catalog.ShopifyConfig{
				StoreDomain: cfg.Shopify.StoreDomain,
				AccessToken: cfg.Shopify.AccessToken,
				APIVersion:  cfg.Shopify.APIVersion,
				SearchLimit: cfg.Shopify.SearchLimit,
				Timeout:     time.Duration(cfg.Shopify.TimeoutSeconds) * time.Second,
			}, log)

			calc := spokecalc.NewHTTPClient(spokecalc.Config{
				URL:     cfg.SpokeCalc.URL,
				Secret:  cfg.SpokeCalc.Secret,
				Timeout: time.Duration(cfg.SpokeCalc.TimeoutSeconds) * time.Second,
			}, log)

			runner := agent.NewRunner(client, log, cfg.Agent.MaxToolSteps)
			server := gateway.New(cfg, log, runner, cat, calc)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override the configured listen port")
	cmd.Flags().StringVar(&bind, "bind", "", "override the configured bind mode (loopback, lan, custom)")

	return cmd
}
