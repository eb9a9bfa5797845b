package config

// Config is the root configuration for the shop tech agent.
type Config struct {
	Server    ServerConfig    `yaml:"server,omitempty"`
	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Shopify   ShopifyConfig   `yaml:"shopify,omitempty"`
	SpokeCalc SpokeCalcConfig `yaml:"spokeCalc,omitempty"`
	Shop      ShopConfig      `yaml:"shop,omitempty"`
	Agent     AgentConfig     `yaml:"agent,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// ServerConfig controls the HTTP/WebSocket server.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"` // CORS; "*" for permissive setups
}

// OpenAIConfig configures the language-model API.
type OpenAIConfig struct {
	APIKey         string   `yaml:"apiKey,omitempty"`
	Model          string   `yaml:"model,omitempty"`
	BaseURL        string   `yaml:"baseUrl,omitempty"` // override for OpenAI-compatible endpoints
	TimeoutSeconds int      `yaml:"timeoutSeconds,omitempty"`
	MaxTokens      int      `yaml:"maxTokens,omitempty"`
	Temperature    *float64 `yaml:"temperature,omitempty"`
}

// ShopifyConfig configures the commerce catalog client.
type ShopifyConfig struct {
	StoreDomain    string `yaml:"storeDomain,omitempty"` // e.g. "loamlabs.myshopify.com"
	AccessToken    string `yaml:"accessToken,omitempty"` // Admin API access token
	APIVersion     string `yaml:"apiVersion,omitempty"`
	SearchLimit    int    `yaml:"searchLimit,omitempty"` // products fetched per search
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// SpokeCalcConfig configures the spoke-length calculation service.
type SpokeCalcConfig struct {
	URL            string `yaml:"url,omitempty"`
	Secret         string `yaml:"secret,omitempty"` // shared secret, sent as x-internal-secret
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// ShopConfig holds store-level policy constants.
type ShopConfig struct {
	// BuildDays is the shop build buffer added on top of manufacturer lead
	// time for every special-order estimate.
	BuildDays int `yaml:"buildDays,omitempty"`
}

// AgentConfig controls the conversation orchestrator.
type AgentConfig struct {
	MaxToolSteps int `yaml:"maxToolSteps,omitempty"` // tool round-trips per request
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
	File         string `yaml:"file,omitempty"`
}
