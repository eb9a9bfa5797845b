package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:           8787,
			Bind:           "loopback",
			AllowedOrigins: []string{"https://loamlabsusa.com"},
		},
		OpenAI: OpenAIConfig{
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 60,
			MaxTokens:      1024,
		},
		Shopify: ShopifyConfig{
			APIVersion:     "2024-04",
			SearchLimit:    10,
			TimeoutSeconds: 15,
		},
		SpokeCalc: SpokeCalcConfig{
			TimeoutSeconds: 15,
		},
		Shop: ShopConfig{
			BuildDays: 5,
		},
		Agent: AgentConfig{
			MaxToolSteps: 5,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// applyDefaults fills zero-valued fields after YAML unmarshal, so a partial
// config file doesn't wipe out defaults.
func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = def.Server.Bind
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = def.Server.AllowedOrigins
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = def.OpenAI.Model
	}
	if cfg.OpenAI.TimeoutSeconds == 0 {
		cfg.OpenAI.TimeoutSeconds = def.OpenAI.TimeoutSeconds
	}
	if cfg.OpenAI.MaxTokens == 0 {
		cfg.OpenAI.MaxTokens = def.OpenAI.MaxTokens
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = def.Shopify.APIVersion
	}
	if cfg.Shopify.SearchLimit == 0 {
		cfg.Shopify.SearchLimit = def.Shopify.SearchLimit
	}
	if cfg.Shopify.TimeoutSeconds == 0 {
		cfg.Shopify.TimeoutSeconds = def.Shopify.TimeoutSeconds
	}
	if cfg.SpokeCalc.TimeoutSeconds == 0 {
		cfg.SpokeCalc.TimeoutSeconds = def.SpokeCalc.TimeoutSeconds
	}
	if cfg.Shop.BuildDays == 0 {
		cfg.Shop.BuildDays = def.Shop.BuildDays
	}
	if cfg.Agent.MaxToolSteps == 0 {
		cfg.Agent.MaxToolSteps = def.Agent.MaxToolSteps
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = def.Logging.ConsoleStyle
	}
}
