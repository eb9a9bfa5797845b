package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/catalog"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/domain"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/llm"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/logging"
)

const lookupToolName = "lookup_product"

// LookupProductTool answers stock and lead-time questions against the store
// catalog. It is bound to one request's BuildContext.
type LookupProductTool struct {
	catalog   catalog.Client
	build     domain.BuildContext
	buildDays int
	log       *logging.Logger
}

// NewLookupProductTool creates the catalog lookup tool for one request.
func NewLookupProductTool(client catalog.Client, build domain.BuildContext, buildDays int, log *logging.Logger) *LookupProductTool {
	return &LookupProductTool{
		catalog:   client,
		build:     build,
		buildDays: buildDays,
		log:       log.Sub("lookup"),
	}
}

func (t *LookupProductTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        lookupToolName,
		Description: "Look up products in the store catalog by name to check live stock levels, variants, prices and lead times. Use for any availability or 'do you have' question.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Product name or keywords, e.g. 'Hope Pro 5 rear hub'",
				},
			},
			"required": []string{"query"},
		},
	}
}

type lookupArgs struct {
	Query string `json:"query"`
}

// Execute runs the search → filter → summarize pipeline. Hub queries that
// resolve to neither front nor rear are stopped here with a clarification
// signal instead of searching: front and rear listings are distinct products
// and a blind search would report the wrong one.
func (t *LookupProductTool) Execute(ctx context.Context, args json.RawMessage) (ToolOutcome, error) {
	var parsed lookupArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return ToolOutcome{}, fmt.Errorf("parse lookup arguments: %w", err)
	}
	query := strings.TrimSpace(parsed.Query)
	if query == "" {
		return ToolOutcome{}, fmt.Errorf("lookup requires a query")
	}

	if t.needsPosition(query) {
		return ToolOutcome{NeedsClarification: true, Field: "position"}, nil
	}

	searchTerms := catalog.CleanQuery(query)
	products, err := t.catalog.Search(ctx, searchTerms)
	if err != nil {
		t.log.Error().Err(err).Str("query", searchTerms).Msg("catalog search failed")
		return ToolOutcome{Text: "I couldn't reach the catalog just now. Tell the customer to try again in a moment."}, nil
	}
	if len(products) == 0 {
		return ToolOutcome{Text: fmt.Sprintf("No catalog results for %q. The store may not carry it.", searchTerms)}, nil
	}

	result := catalog.Filter(products, query, t.build)
	if len(result.Matches) == 0 {
		return ToolOutcome{Text: fmt.Sprintf(
			"The catalog returned %d products for %q, but none match the requested position or configuration. Ask the customer to confirm the exact product they mean.",
			result.Searched, searchTerms)}, nil
	}

	report := catalog.Summarize(result.Matches, t.buildDays)
	if result.Total > len(result.Matches) {
		report += fmt.Sprintf("\n\n(Showing top %d of %d matches.)", len(result.Matches), result.Total)
	}
	return ToolOutcome{Text: report}, nil
}

// needsPosition reports whether the query is a hub lookup with no resolvable
// front/rear position from either the query or the build context.
func (t *LookupProductTool) needsPosition(query string) bool {
	lower := strings.ToLower(query)
	if !strings.Contains(lower, "hub") {
		return false
	}
	words := strings.Fields(lower)
	for _, w := range words {
		w = strings.Trim(w, ".,!?\"'()")
		if w == "front" || w == "rear" {
			return false
		}
	}
	return t.build.Position == domain.PositionUnset
}
