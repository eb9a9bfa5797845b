package catalog

import (
	"fmt"
	"strings"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/domain"
)

// Lead-time policy: a special-order estimate is always manufacturer lead
// time plus the shop build buffer. The buffer is applied here and nowhere
// else.

// Summarize renders an availability report for the given products. Pure
// function of its inputs.
//
// Classification per product:
//   - any variant with positive quantity → IN STOCK, listing those variants
//   - otherwise any oversellable variant → Special Order with total lead time
//   - otherwise → Sold Out
func Summarize(products []domain.ProductRecord, buildDays int) string {
	if len(products) == 0 {
		return "No products to report."
	}

	blocks := make([]string, 0, len(products))
	for _, p := range products {
		blocks = append(blocks, summarizeOne(p, buildDays))
	}
	return strings.Join(blocks, "\n\n")
}

func summarizeOne(p domain.ProductRecord, buildDays int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n", p.Title)

	switch {
	case p.InStock():
		fmt.Fprintf(&b, "Status: IN STOCK (ships in ~%d days)\n", buildDays)
		for _, v := range p.Variants {
			if v.InventoryQuantity <= 0 {
				continue
			}
			fmt.Fprintf(&b, "  - %s: %d available\n", variantLabel(v), v.InventoryQuantity)
		}
	case p.Oversellable():
		total := p.LeadTimeDays + buildDays
		fmt.Fprintf(&b, "Status: Special Order (mfg lead time %d days + %d days build = ~%d days total)\n",
			p.LeadTimeDays, buildDays, total)
	default:
		b.WriteString("Status: Sold Out\n")
	}

	fmt.Fprintf(&b, "Stock Level: %d", p.TotalInventory)
	return b.String()
}

func variantLabel(v domain.VariantRecord) string {
	if v.Title != "" && v.Title != "Default Title" {
		return v.Title
	}
	return "Standard"
}
