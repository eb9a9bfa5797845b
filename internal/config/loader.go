package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so keys and tokens can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.OpenAI.APIKey = expandEnvVars(cfg.OpenAI.APIKey)
	cfg.Shopify.AccessToken = expandEnvVars(cfg.Shopify.AccessToken)
	cfg.SpokeCalc.Secret = expandEnvVars(cfg.SpokeCalc.Secret)
}

// applyEnvOverrides lets deployment environments configure the service
// without a file. Variable names match the original serverless deployment.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("SHOPIFY_STORE_DOMAIN"); v != "" {
		cfg.Shopify.StoreDomain = v
	}
	if v := os.Getenv("SHOPIFY_ADMIN_API_ACCESS_TOKEN"); v != "" {
		cfg.Shopify.AccessToken = v
	}
	if v := os.Getenv("SPOKE_CALC_API_URL"); v != "" {
		cfg.SpokeCalc.URL = v
	}
	if v := os.Getenv("SPOKE_CALC_API_SECRET"); v != "" {
		cfg.SpokeCalc.Secret = v
	}
	if v := os.Getenv("ALLOWED_ORIGIN"); v != "" {
		cfg.Server.AllowedOrigins = splitOrigins(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}
