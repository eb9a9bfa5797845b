package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/domain"
)

func hub(title string, tags ...string) domain.ProductRecord {
	if tags == nil {
		tags = []string{"component:hub"}
	}
	return domain.ProductRecord{
		Title: title,
		Tags:  tags,
		Variants: []domain.VariantRecord{
			{Title: "Default Title", InventoryQuantity: 1},
		},
	}
}

func titles(products []domain.ProductRecord) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Title)
	}
	return out
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Is the Hope Pro 5 rear hub in stock?")
	// short words and stopwords drop out; "rear" and "hub" stay (they are
	// filters and scoring signals, not noise)
	assert.Equal(t, []string{"hope", "pro", "rear", "hub"}, tokens)
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize("is it in stock"))
}

func TestFilterFrontExcludesRearOnly(t *testing.T) {
	candidates := []domain.ProductRecord{
		hub("Hope Pro 5 Front Hub"),
		hub("Hope Pro 5 Rear Hub"),
		hub("Hope Pro 5 Front/Rear Hub Set"),
	}

	result := Filter(candidates, "Hope front hub", domain.BuildContext{})

	for _, p := range result.Matches {
		// A front query must never surface a rear-only listing.
		assert.NotEqual(t, "Hope Pro 5 Rear Hub", p.Title)
	}
	assert.Contains(t, titles(result.Matches), "Hope Pro 5 Front Hub")
	// Combined front/rear listings survive
	assert.Contains(t, titles(result.Matches), "Hope Pro 5 Front/Rear Hub Set")
}

func TestFilterRearExcludesFrontOnly(t *testing.T) {
	candidates := []domain.ProductRecord{
		hub("Hope Pro 5 Rear Hub"),
		hub("Hope Pro 5 Front Hub"),
	}

	result := Filter(candidates, "Hope rear hub", domain.BuildContext{})

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "Hope Pro 5 Rear Hub", result.Matches[0].Title)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 2, result.Searched)
}

func TestFilterCategoryTagExcludesWheelsets(t *testing.T) {
	candidates := []domain.ProductRecord{
		hub("Hydra Rear Hub", "component:hub"),
		hub("Hydra Enduro S Wheelset", "wheelset"),
	}

	result := Filter(candidates, "Hydra rear hub", domain.BuildContext{})

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "Hydra Rear Hub", result.Matches[0].Title)
}

func TestFilterScoringOrder(t *testing.T) {
	candidates := []domain.ProductRecord{
		hub("DT Swiss 350 Rear Hub"),
		hub("Hope Pro 5 Rear Hub"), // exact phrase match should rank first
	}

	result := Filter(candidates, "Hope Pro 5 Rear Hub", domain.BuildContext{})

	require.NotEmpty(t, result.Matches)
	assert.Equal(t, "Hope Pro 5 Rear Hub", result.Matches[0].Title)
}

func TestFilterEmptyTokensKeepsEverything(t *testing.T) {
	candidates := []domain.ProductRecord{
		hub("Hope Pro 5 Rear Hub"),
		hub("DT Swiss 350 Rear Hub"),
	}

	// Nothing but stopwords: no constraint, nothing excluded.
	result := Filter(candidates, "in stock?", domain.BuildContext{})
	assert.Len(t, result.Matches, 2)
	assert.Equal(t, 2, result.Total)
}

func TestFilterBuildContextPosition(t *testing.T) {
	candidates := []domain.ProductRecord{
		hub("Hope Pro 5 Front Hub"),
		hub("Hope Pro 5 Rear Hub"),
	}

	// Query doesn't name a position; build context says rear.
	result := Filter(candidates, "Hope Pro 5", domain.BuildContext{Position: domain.PositionRear})
	assert.Equal(t, []string{"Hope Pro 5 Rear Hub"}, titles(result.Matches))

	// Explicitly asking for front overrides the rear build context.
	result = Filter(candidates, "Hope Pro 5 front options too", domain.BuildContext{Position: domain.PositionRear})
	assert.Contains(t, titles(result.Matches), "Hope Pro 5 Front Hub")
}

func TestFilterBuildContextAxleSpacing(t *testing.T) {
	candidates := []domain.ProductRecord{
		hub("Hope Pro 5 Rear Hub 148mm Boost"),
		hub("Hope Pro 5 Rear Hub 142mm"),
	}

	result := Filter(candidates, "Hope rear hub", domain.BuildContext{AxleSpacing: "148"})
	assert.Equal(t, []string{"Hope Pro 5 Rear Hub 148mm Boost"}, titles(result.Matches))

	// "boost" normalizes to 148
	result = Filter(candidates, "Hope rear hub", domain.BuildContext{AxleSpacing: "boost"})
	assert.Equal(t, []string{"Hope Pro 5 Rear Hub 148mm Boost"}, titles(result.Matches))

	// Naming the other spacing skips the context filter.
	result = Filter(candidates, "Hope rear hub 142", domain.BuildContext{AxleSpacing: "148"})
	assert.Contains(t, titles(result.Matches), "Hope Pro 5 Rear Hub 142mm")
}

func TestFilterSuperBoostSpelledAsTwoWords(t *testing.T) {
	candidates := []domain.ProductRecord{
		hub("Hydra Classic Rear Hub Super Boost 157mm"),
		hub("Hydra Classic Rear Hub Boost 148mm"),
	}

	// The "boost" inside "Super Boost" must not read as 148.
	result := Filter(candidates, "Hydra rear hub", domain.BuildContext{AxleSpacing: "157"})
	assert.Equal(t, []string{"Hydra Classic Rear Hub Super Boost 157mm"}, titles(result.Matches))

	// Same when the title carries no millimeter token at all.
	result = Filter([]domain.ProductRecord{hub("Hydra Classic Rear Hub Super Boost")}, "Hydra rear hub", domain.BuildContext{AxleSpacing: "157"})
	assert.Equal(t, []string{"Hydra Classic Rear Hub Super Boost"}, titles(result.Matches))

	// Configurators send the marketing name in either spelling.
	result = Filter(candidates, "Hydra rear hub", domain.BuildContext{AxleSpacing: "Super Boost"})
	assert.Equal(t, []string{"Hydra Classic Rear Hub Super Boost 157mm"}, titles(result.Matches))

	// Asking for super boost by name overrides a 148 build.
	result = Filter(candidates, "Hydra rear hub super boost", domain.BuildContext{AxleSpacing: "148"})
	assert.Contains(t, titles(result.Matches), "Hydra Classic Rear Hub Super Boost 157mm")
}

func TestFilterBuildContextBrake(t *testing.T) {
	candidates := []domain.ProductRecord{
		hub("Onyx Vesper Rear Hub Centerlock"),
		hub("Onyx Vesper Rear Hub 6-Bolt"),
	}

	result := Filter(candidates, "Onyx rear hub", domain.BuildContext{BrakeInterface: "centerlock"})
	assert.Equal(t, []string{"Onyx Vesper Rear Hub Centerlock"}, titles(result.Matches))

	result = Filter(candidates, "Onyx rear hub 6 bolt", domain.BuildContext{BrakeInterface: "centerlock"})
	assert.Contains(t, titles(result.Matches), "Onyx Vesper Rear Hub 6-Bolt")
}

func TestFilterTruncatesToTopN(t *testing.T) {
	var candidates []domain.ProductRecord
	for _, name := range []string{"One", "Two", "Three", "Four", "Five", "Six", "Seven"} {
		candidates = append(candidates, hub("Hope "+name+" Hub"))
	}

	result := Filter(candidates, "Hope hub", domain.BuildContext{})
	assert.Len(t, result.Matches, 5)
	assert.Equal(t, 7, result.Total)
	assert.Equal(t, 7, result.Searched)
}

func TestFilterIdempotent(t *testing.T) {
	candidates := []domain.ProductRecord{
		hub("Hope Pro 5 Rear Hub"),
		hub("DT Swiss 350 Rear Hub"),
		hub("Onyx Vesper Rear Hub"),
	}

	first := Filter(candidates, "rear hub", domain.BuildContext{})
	second := Filter(candidates, "rear hub", domain.BuildContext{})
	assert.Equal(t, first, second)
}

func TestCleanQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Is the Hope Pro 5 rear hub in stock?", "Hope Pro 5"},
		{"do you have any Sapim CX-Ray spokes", "Sapim CX-Ray spokes"},
		{"front hub", "front hub"}, // cleaning everything falls back to the original
		{"  Reserve 30 HD  ", "Reserve 30 HD"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanQuery(tt.in), "query %q", tt.in)
	}
}
