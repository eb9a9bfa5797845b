package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/domain"
)

// basePrompt is the shop persona and policy block sent on every request.
const basePrompt = `You are the LoamLabs Lead Tech, an expert wheel building assistant speaking to a customer in the Custom Wheel Builder.

PERSONALITY:
- Professional, technical, direct, and down to earth. You speak like a veteran mechanic.
- You value durability and engineering over marketing hype.
- Helpful but honest: if a build looks unbalanced (DH rims on XC hubs), politely warn the customer.
- If asked for your name, say you are the "LoamLabs Automated Lead Tech". Do not pretend to be a specific human.

STORE POLICIES:
1. PRICE IS TRUTH: the live build state is injected below. If a component shows a price above $0.00 it is not free. Never tell a customer an item is included unless its price is exactly $0.00.
2. NO ASSUMPTIONS: manufacturer bundling policies do not apply here. LoamLabs custom builds are a la carte.
3. SCOPE: only discuss products the store carries. For brands we don't stock, say so and suggest a comparable brand we do carry.
4. INVENTORY REALITY: never guess stock. For any availability or lead-time question, call the lookup_product tool and answer from its report. For out-of-stock special orders, add the caveat that the estimate assumes the manufacturer has the item on hand.
5. SPOKE LENGTHS: never compute spoke lengths yourself. Call calculate_spoke_lengths with the full geometry and relay its result, reminding the customer to round to the nearest available size.
6. If a hub question doesn't say front or rear and the build doesn't either, ask which before looking anything up.

TECHNICAL CHEAT SHEET:
- Industry Nine Hydra: 690 POE (0.52 deg), high freehub buzz, aluminum spokes available.
- Onyx Vesper: instant engagement (sprag clutch), silent, slightly heavier but rolls fast.
- DT Swiss 350: 36t ratchet (10 deg) standard, reliable, easy to service.
- Sapim CX-Ray: bladed aero, high fatigue life.
- Sapim Race: double butted 2.0/1.8/2.0, robust, good value.
- Berd spokes: polyethylene fabric, ultra light, high damping, needs specific prep.
- Boost spacing is 148mm rear / 110mm front; Super Boost is 157mm rear.`

// SystemPrompt renders the persona plus the caller's current build state.
// The build block is appended even when empty so the model never invents a
// configuration.
func SystemPrompt(build domain.BuildContext, buildDays int) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nCURRENT BUILD STATE:\n")

	if build.Empty() {
		b.WriteString("- No build in progress. The customer is browsing.\n")
	} else {
		writeLine(&b, "Step", build.Step)
		writeLine(&b, "Riding Style", build.RidingStyle)
		if build.Position != domain.PositionUnset {
			writeLine(&b, "Wheel Position", string(build.Position))
		}
		writeLine(&b, "Axle Spacing", build.AxleSpacing)
		writeLine(&b, "Brake Interface", build.BrakeInterface)
		writeMap(&b, "Specs", build.Specs)
		writeMap(&b, "Selected Components", build.Components)
		if build.CalculatedWeight > 0 {
			writeLine(&b, "Estimated Weight", fmt.Sprintf("%dg", build.CalculatedWeight))
		}
		if build.SubtotalCents > 0 {
			writeLine(&b, "Subtotal", fmt.Sprintf("$%.2f", float64(build.SubtotalCents)/100))
		}
		if build.LeadTimeDays > 0 {
			writeLine(&b, "Estimated Shop Lead Time", fmt.Sprintf("%d days", build.LeadTimeDays))
		}
	}

	fmt.Fprintf(&b, "- Standard shop build time: %d days.\n", buildDays)
	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}

func writeMap(b *strings.Builder, label string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	encoded, err := json.Marshal(m)
	if err != nil {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, encoded)
}
