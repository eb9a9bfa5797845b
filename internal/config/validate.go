package config

import "fmt"

// ValidationIssue describes a single config problem.
type ValidationIssue struct {
	Field   string
	Message string
	Fatal   bool
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// Validate checks the config and returns any issues found. Issues marked
// Fatal prevent the server from starting; the rest are warnings.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Field: "server.port", Message: "must be between 1 and 65535", Fatal: true,
		})
	}
	switch cfg.Server.Bind {
	case "loopback", "lan", "custom":
	default:
		issues = append(issues, ValidationIssue{
			Field: "server.bind", Message: "must be loopback, lan, or custom", Fatal: true,
		})
	}

	if cfg.OpenAI.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Field: "openai.apiKey", Message: "required (set OPENAI_API_KEY)", Fatal: true,
		})
	}
	if cfg.OpenAI.TimeoutSeconds < 1 {
		issues = append(issues, ValidationIssue{
			Field: "openai.timeoutSeconds", Message: "must be positive", Fatal: true,
		})
	}

	if cfg.Shopify.StoreDomain == "" {
		issues = append(issues, ValidationIssue{
			Field: "shopify.storeDomain", Message: "required (set SHOPIFY_STORE_DOMAIN)", Fatal: true,
		})
	}
	if cfg.Shopify.AccessToken == "" {
		issues = append(issues, ValidationIssue{
			Field: "shopify.accessToken", Message: "required (set SHOPIFY_ADMIN_API_ACCESS_TOKEN)", Fatal: true,
		})
	}

	if cfg.SpokeCalc.URL == "" {
		issues = append(issues, ValidationIssue{
			Field: "spokeCalc.url", Message: "not set — spoke length calculations will be unavailable",
		})
	}

	if cfg.Shop.BuildDays < 0 {
		issues = append(issues, ValidationIssue{
			Field: "shop.buildDays", Message: "must not be negative", Fatal: true,
		})
	}
	if cfg.Agent.MaxToolSteps < 1 {
		issues = append(issues, ValidationIssue{
			Field: "agent.maxToolSteps", Message: "must be at least 1", Fatal: true,
		})
	}

	return issues
}

// HasFatal reports whether any issue prevents startup.
func HasFatal(issues []ValidationIssue) bool {
	for _, i := range issues {
		if i.Fatal {
			return true
		}
	}
	return false
}
