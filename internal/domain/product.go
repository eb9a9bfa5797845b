package domain

// VariantRecord is one purchasable variant of a catalog product.
type VariantRecord struct {
	Title             string            `json:"title"`
	InventoryQuantity int               `json:"inventoryQuantity"`
	OversellAllowed   bool              `json:"oversellAllowed"` // inventory_policy == "continue"
	PriceCents        int               `json:"price,omitempty"`
	SelectedOptions   map[string]string `json:"selectedOptions,omitempty"`
}

// ProductRecord is a catalog product as returned by the commerce platform.
// Records live for one tool invocation; nothing is cached.
type ProductRecord struct {
	Title          string          `json:"title"`
	Tags           []string        `json:"tags,omitempty"`
	Variants       []VariantRecord `json:"variants"`
	LeadTimeDays   int             `json:"leadTimeDays"` // manufacturer lead time metafield, 0 if unset
	TotalInventory int             `json:"totalInventory"`
}

// InStock reports whether any variant has positive tracked inventory.
func (p ProductRecord) InStock() bool {
	for _, v := range p.Variants {
		if v.InventoryQuantity > 0 {
			return true
		}
	}
	return false
}

// Oversellable reports whether any variant may be ordered past zero stock.
func (p ProductRecord) Oversellable() bool {
	for _, v := range p.Variants {
		if v.OversellAllowed {
			return true
		}
	}
	return false
}

// HasTag reports whether the product carries the given tag (exact match).
func (p ProductRecord) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
