// Package spokecalc calls the internal spoke-length calculation service.
package spokecalc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/logging"
)

// Params are the wheel-geometry inputs for one hub/rim combination. ERD and
// the flange measurements are millimeters; pcd is the spoke-hole circle
// diameter per flange, flange the center-to-flange distance per side.
type Params struct {
	ERD          float64 `json:"erd"`
	PCDLeft      float64 `json:"pcdLeft"`
	PCDRight     float64 `json:"pcdRight"`
	FlangeLeft   float64 `json:"flangeLeft"`
	FlangeRight  float64 `json:"flangeRight"`
	SpokeCount   int     `json:"spokeCount"`
	CrossPattern int     `json:"crossPattern"`
}

// Validate rejects geometry the calculation service would choke on. Every
// parameter must be positive.
func (p Params) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"erd", p.ERD > 0},
		{"pcdLeft", p.PCDLeft > 0},
		{"pcdRight", p.PCDRight > 0},
		{"flangeLeft", p.FlangeLeft > 0},
		{"flangeRight", p.FlangeRight > 0},
		{"spokeCount", p.SpokeCount > 0},
		{"crossPattern", p.CrossPattern > 0},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("invalid %s: must be positive", c.name)
		}
	}
	return nil
}

// Result is a pair of spoke lengths in millimeters.
type Result struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Client calculates spoke lengths for a hub/rim combination.
type Client interface {
	Calculate(ctx context.Context, params Params) (Result, error)
}

// Config configures the HTTP calculation client.
type Config struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

// HTTPClient implements Client against the calculation service's HTTP API.
// Requests carry a shared secret header; the service is not exposed publicly.
type HTTPClient struct {
	cfg    Config
	client *http.Client
	log    *logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a calculation client.
func NewHTTPClient(cfg Config, log *logging.Logger) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.Sub("spokecalc"),
	}
}

// Calculate posts the geometry to the service and returns the length pair.
func (c *HTTPClient) Calculate(ctx context.Context, params Params) (Result, error) {
	if c.cfg.URL == "" {
		return Result{}, fmt.Errorf("calculation service not configured")
	}
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	payload, err := json.Marshal(params)
	if err != nil {
		return Result{}, fmt.Errorf("marshal calculation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("create calculation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-internal-secret", c.cfg.Secret)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("calculation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read calculation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("calculation service error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("parse calculation response: %w", err)
	}
	if result.Left <= 0 || result.Right <= 0 {
		return Result{}, fmt.Errorf("calculation returned non-positive lengths: left=%.1f right=%.1f", result.Left, result.Right)
	}

	c.log.Debug().
		Float64("left", result.Left).
		Float64("right", result.Right).
		Dur("duration", time.Since(start)).
		Msg("spoke lengths calculated")

	return result, nil
}
