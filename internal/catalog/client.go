// Package catalog talks to the commerce platform's Admin API and turns raw
// search results into ranked, human-readable availability reports.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/domain"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/logging"
)

// Client is a read-only product search interface.
type Client interface {
	// Search returns up to the configured number of products matching the
	// free-text query. Results are not cached; stock data is only as fresh
	// as the platform reports it.
	Search(ctx context.Context, query string) ([]domain.ProductRecord, error)
}

// productSearchQuery is the Admin GraphQL query for product lookups. The
// lead-time metafield is shop-specific (custom.lead_time_days).
const productSearchQuery = `
query searchProducts($query: String!, $first: Int!) {
  products(first: $first, query: $query) {
    edges {
      node {
        title
        tags
        totalInventory
        leadTime: metafield(namespace: "custom", key: "lead_time_days") { value }
        variants(first: 10) {
          edges {
            node {
              title
              inventoryPolicy
              inventoryQuantity
              price
              selectedOptions { name value }
            }
          }
        }
      }
    }
  }
}`

// ShopifyConfig configures the Shopify Admin API client.
type ShopifyConfig struct {
	StoreDomain string // e.g. "loamlabs.myshopify.com"
	AccessToken string
	APIVersion  string // e.g. "2024-04"
	SearchLimit int
	Timeout     time.Duration
}

// ShopifyClient implements Client against the Shopify Admin GraphQL API.
type ShopifyClient struct {
	cfg    ShopifyConfig
	url    string
	client *http.Client
	log    *logging.Logger
}

var _ Client = (*ShopifyClient)(nil)

// NewShopifyClient creates a catalog client for the given store.
func NewShopifyClient(cfg ShopifyConfig, log *logging.Logger) *ShopifyClient {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &ShopifyClient{
		cfg:    cfg,
		url:    fmt.Sprintf("https://%s/admin/api/%s/graphql.json", cfg.StoreDomain, cfg.APIVersion),
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.Sub("catalog"),
	}
}

// Search runs the product search query against the Admin API.
func (c *ShopifyClient) Search(ctx context.Context, query string) ([]domain.ProductRecord, error) {
	payload, err := json.Marshal(map[string]any{
		"query": productSearchQuery,
		"variables": map[string]any{
			"query": query,
			"first": c.cfg.SearchLimit,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.cfg.AccessToken)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse catalog response: %w", err)
	}
	if parsed.Data == nil {
		return nil, fmt.Errorf("catalog response missing data: %s", strings.TrimSpace(string(body)))
	}

	products := make([]domain.ProductRecord, 0, len(parsed.Data.Products.Edges))
	for _, edge := range parsed.Data.Products.Edges {
		products = append(products, edge.Node.toRecord())
	}

	c.log.Debug().
		Str("query", query).
		Int("results", len(products)).
		Dur("duration", time.Since(start)).
		Msg("catalog search")

	return products, nil
}

// Admin GraphQL response shapes.

type searchResponse struct {
	Data *struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
}

type productNode struct {
	Title          string   `json:"title"`
	Tags           []string `json:"tags"`
	TotalInventory int      `json:"totalInventory"`
	LeadTime       *struct {
		Value string `json:"value"`
	} `json:"leadTime"`
	Variants struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type variantNode struct {
	Title             string `json:"title"`
	InventoryPolicy   string `json:"inventoryPolicy"`
	InventoryQuantity int    `json:"inventoryQuantity"`
	Price             string `json:"price"`
	SelectedOptions   []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"selectedOptions"`
}

func (n productNode) toRecord() domain.ProductRecord {
	rec := domain.ProductRecord{
		Title:          n.Title,
		Tags:           n.Tags,
		TotalInventory: n.TotalInventory,
	}
	if n.LeadTime != nil {
		if days, err := strconv.Atoi(strings.TrimSpace(n.LeadTime.Value)); err == nil {
			rec.LeadTimeDays = days
		}
	}
	for _, edge := range n.Variants.Edges {
		v := edge.Node
		variant := domain.VariantRecord{
			Title:             v.Title,
			InventoryQuantity: v.InventoryQuantity,
			OversellAllowed:   strings.EqualFold(v.InventoryPolicy, "continue"),
			PriceCents:        parsePriceCents(v.Price),
		}
		if len(v.SelectedOptions) > 0 {
			variant.SelectedOptions = make(map[string]string, len(v.SelectedOptions))
			for _, opt := range v.SelectedOptions {
				variant.SelectedOptions[opt.Name] = opt.Value
			}
		}
		rec.Variants = append(rec.Variants, variant)
	}
	return rec
}

// parsePriceCents converts a decimal price string ("129.99") to cents.
// Malformed prices come back as 0 rather than failing the whole search.
func parsePriceCents(price string) int {
	price = strings.TrimSpace(price)
	if price == "" {
		return 0
	}
	whole, frac, _ := strings.Cut(price, ".")
	cents, err := strconv.Atoi(whole)
	if err != nil {
		return 0
	}
	cents *= 100
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		if f, err := strconv.Atoi(frac); err == nil {
			cents += f
		}
	}
	return cents
}
