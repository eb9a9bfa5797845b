package domain

// Position is a wheel position constraint from the build configurator.
type Position string

const (
	PositionFront Position = "front"
	PositionRear  Position = "rear"
	PositionUnset Position = ""
)

// BuildContext is the caller-supplied snapshot of the user's in-progress
// wheel build. It is read-only input: the agent never mutates it, and a
// fresh one arrives with every request.
type BuildContext struct {
	Step             string            `json:"step,omitempty"`
	RidingStyle      string            `json:"ridingStyle,omitempty"`
	Position         Position          `json:"position,omitempty"`
	AxleSpacing      string            `json:"axleSpacing,omitempty"`    // e.g. "148", "boost"
	BrakeInterface   string            `json:"brakeInterface,omitempty"` // "centerlock" | "6-bolt"
	Specs            map[string]string `json:"specs,omitempty"`
	Components       map[string]string `json:"components,omitempty"` // component category → selected product title
	CalculatedWeight int               `json:"calculatedWeight,omitempty"` // grams
	SubtotalCents    int               `json:"subtotal,omitempty"`
	LeadTimeDays     int               `json:"leadTimeDays,omitempty"`
}

// Empty reports whether no build state has been supplied at all.
func (b BuildContext) Empty() bool {
	return b.Step == "" && b.RidingStyle == "" && b.Position == PositionUnset &&
		b.AxleSpacing == "" && b.BrakeInterface == "" &&
		len(b.Specs) == 0 && len(b.Components) == 0 &&
		b.SubtotalCents == 0 && b.LeadTimeDays == 0
}
