package catalog

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(os.Stderr, "disabled")
}

const sampleSearchResponse = `{
  "data": {
    "products": {
      "edges": [
        {
          "node": {
            "title": "Hope Pro 5 Rear Hub",
            "tags": ["component:hub", "brand:hope"],
            "totalInventory": 3,
            "leadTime": {"value": "10"},
            "variants": {
              "edges": [
                {
                  "node": {
                    "title": "32h Black",
                    "inventoryPolicy": "DENY",
                    "inventoryQuantity": 3,
                    "price": "129.99",
                    "selectedOptions": [{"name": "Drilling", "value": "32h"}]
                  }
                },
                {
                  "node": {
                    "title": "28h Black",
                    "inventoryPolicy": "CONTINUE",
                    "inventoryQuantity": 0,
                    "price": "129.99",
                    "selectedOptions": [{"name": "Drilling", "value": "28h"}]
                  }
                }
              ]
            }
          }
        }
      ]
    }
  }
}`

func newTestShopifyClient(t *testing.T, handler http.HandlerFunc) *ShopifyClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewShopifyClient(ShopifyConfig{
		StoreDomain: "test.myshopify.com",
		AccessToken: "shpat_test",
		APIVersion:  "2024-04",
		SearchLimit: 10,
		Timeout:     5 * time.Second,
	}, testLogger())
	c.url = srv.URL
	return c
}

func TestSearchSendsTokenAndQuery(t *testing.T) {
	var gotToken string
	var gotBody map[string]any

	c := newTestShopifyClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sampleSearchResponse)
	})

	_, err := c.Search(t.Context(), "Hope Pro 5")
	require.NoError(t, err)

	assert.Equal(t, "shpat_test", gotToken)
	vars, ok := gotBody["variables"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Hope Pro 5", vars["query"])
	assert.Equal(t, float64(10), vars["first"])
}

func TestSearchParsesProducts(t *testing.T) {
	c := newTestShopifyClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sampleSearchResponse)
	})

	products, err := c.Search(t.Context(), "Hope")
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "Hope Pro 5 Rear Hub", p.Title)
	assert.Equal(t, []string{"component:hub", "brand:hope"}, p.Tags)
	assert.Equal(t, 3, p.TotalInventory)
	assert.Equal(t, 10, p.LeadTimeDays)
	assert.True(t, p.InStock())

	require.Len(t, p.Variants, 2)
	assert.Equal(t, "32h Black", p.Variants[0].Title)
	assert.False(t, p.Variants[0].OversellAllowed)
	assert.Equal(t, 12999, p.Variants[0].PriceCents)
	assert.Equal(t, "32h", p.Variants[0].SelectedOptions["Drilling"])
	assert.True(t, p.Variants[1].OversellAllowed)
}

func TestSearchAPIError(t *testing.T) {
	c := newTestShopifyClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"errors":"Invalid API key or access token"}`)
	})

	_, err := c.Search(t.Context(), "Hope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSearchMalformedResponse(t *testing.T) {
	c := newTestShopifyClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json")
	})

	_, err := c.Search(t.Context(), "Hope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse catalog response")
}

func TestSearchMissingData(t *testing.T) {
	c := newTestShopifyClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"errors":[{"message":"query malformed"}]}`)
	})

	_, err := c.Search(t.Context(), "Hope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing data")
}

func TestParsePriceCents(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"129.99", 12999},
		{"130", 13000},
		{"0.5", 50},
		{"12.345", 1234},
		{"", 0},
		{"free", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePriceCents(tt.in), "price %q", tt.in)
	}
}
