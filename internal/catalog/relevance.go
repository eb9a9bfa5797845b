package catalog

import (
	"sort"
	"strings"
	"unicode"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/domain"
)

// topN caps how many products a report presents. FilterResult.Total always
// carries the true match count so callers can say "showing 5 of 12".
const topN = 5

// stopwords are excluded from scoring tokens. They stay in the query string
// itself, which is what phrase matching runs against.
var stopwords = map[string]bool{
	"stock": true, "available": true, "pair": true, "set": true,
	"the": true, "and": true, "for": true, "you": true, "have": true,
	"any": true, "got": true, "what": true, "whats": true, "there": true,
}

// categoryTags maps a query keyword to the tag a bare component must carry.
// A query naming a category excludes anything without the tag — this is what
// keeps pre-built wheelsets out of a bare hub search.
var categoryTags = map[string]string{
	"hub":     "component:hub",
	"hubs":    "component:hub",
	"rim":     "component:rim",
	"rims":    "component:rim",
	"spoke":   "component:spoke",
	"spokes":  "component:spoke",
	"nipple":  "component:nipple",
	"nipples": "component:nipple",
}

// axleSpacings are the hub spacing tokens we recognize in titles and queries.
var axleSpacings = []string{"superboost", "boost", "100", "110", "135", "141", "142", "148", "150", "157"}

// spacingAliases normalizes marketing names to millimeter tokens.
var spacingAliases = map[string]string{
	"boost":      "148",
	"superboost": "157",
}

// FilterResult is the outcome of relevance filtering.
type FilterResult struct {
	Matches  []domain.ProductRecord // ranked, truncated to topN
	Total    int                    // matches before truncation
	Searched int                    // raw candidates in
}

// Tokenize splits a query into lowercase scoring tokens: words longer than
// two characters that are not stopwords.
func Tokenize(query string) []string {
	var tokens []string
	for _, w := range splitWords(query) {
		if len(w) > 2 && !stopwords[w] {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// Filter ranks candidates against the query and build context. It is a pure
// function: same inputs, same ordered output.
func Filter(candidates []domain.ProductRecord, query string, build domain.BuildContext) FilterResult {
	phrase := strings.ToLower(strings.TrimSpace(query))
	queryWords := wordSet(query)
	tokens := Tokenize(query)

	type ranked struct {
		product domain.ProductRecord
		score   int
		order   int
	}
	var survivors []ranked

	for i, p := range candidates {
		if excludeByPosition(p, queryWords) {
			continue
		}
		if excludeByCategory(p, queryWords) {
			continue
		}
		if excludeByBuildContext(p, queryWords, build) {
			continue
		}

		titleLower := strings.ToLower(p.Title)
		titleWords := wordSet(p.Title)

		score := 0
		if phrase != "" && strings.Contains(titleLower, phrase) {
			score += 50
		}
		for _, tok := range tokens {
			if titleWords[tok] {
				score += 10
			}
			for _, tag := range p.Tags {
				if strings.Contains(strings.ToLower(tag), tok) {
					score += 5
					break
				}
			}
		}

		// No scoring signal at all means "no constraint": keep everything
		// the hard filters allowed rather than excluding the whole catalog.
		if score == 0 && len(tokens) > 0 {
			continue
		}

		survivors = append(survivors, ranked{product: p, score: score, order: i})
	}

	sort.SliceStable(survivors, func(a, b int) bool {
		if survivors[a].score != survivors[b].score {
			return survivors[a].score > survivors[b].score
		}
		return survivors[a].order < survivors[b].order
	})

	result := FilterResult{
		Total:    len(survivors),
		Searched: len(candidates),
	}
	for i, r := range survivors {
		if i >= topN {
			break
		}
		result.Matches = append(result.Matches, r.product)
	}
	return result
}

// excludeByPosition drops rear-only listings from front queries and vice
// versa. Queries naming both positions constrain nothing.
func excludeByPosition(p domain.ProductRecord, queryWords map[string]bool) bool {
	wantFront := queryWords["front"]
	wantRear := queryWords["rear"]
	if wantFront == wantRear {
		return false
	}

	titleWords := wordSet(p.Title)
	if wantFront && titleWords["rear"] && !titleWords["front"] {
		return true
	}
	if wantRear && titleWords["front"] && !titleWords["rear"] {
		return true
	}
	return false
}

// excludeByCategory drops candidates missing the component tag the query
// asks for (e.g. "hub" requires component:hub).
func excludeByCategory(p domain.ProductRecord, queryWords map[string]bool) bool {
	for kw, tag := range categoryTags {
		if !queryWords[kw] {
			continue
		}
		if !hasTagFold(p, tag) {
			return true
		}
	}
	return false
}

// excludeByBuildContext applies the configurator's known constraints as
// additional filters. Each one is skipped when the query explicitly names
// the value the candidate carries — "front options too" overrides a rear
// build, a named spacing overrides the configured one.
func excludeByBuildContext(p domain.ProductRecord, queryWords map[string]bool, build domain.BuildContext) bool {
	titleWords := wordSet(p.Title)
	titleLower := strings.ToLower(p.Title)

	switch build.Position {
	case domain.PositionFront:
		if !queryWords["rear"] && titleWords["rear"] && !titleWords["front"] {
			return true
		}
	case domain.PositionRear:
		if !queryWords["front"] && titleWords["front"] && !titleWords["rear"] {
			return true
		}
	}

	if build.AxleSpacing != "" {
		want := normalizeSpacing(build.AxleSpacing)
		if got := spacingOf(titleLower, p.Tags); got != "" && got != want {
			// Skippable: the user asked for this spacing by name.
			if !mentionsSpacing(queryWords, got) {
				return true
			}
		}
	}

	if build.BrakeInterface != "" {
		want := normalizeBrake(build.BrakeInterface)
		if got := brakeOf(titleLower, p.Tags); got != "" && want != "" && got != want {
			if !mentionsBrake(queryWords, got) {
				return true
			}
		}
	}

	return false
}

func hasTagFold(p domain.ProductRecord, tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func normalizeSpacing(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "mm")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	if alias, ok := spacingAliases[s]; ok {
		return alias
	}
	return s
}

// spacingOf returns the normalized axle spacing a product advertises, or "".
// An explicit millimeter token outranks a marketing name, so "Super Boost
// 157mm" reads as 157 and the "boost" inside it never wins.
func spacingOf(titleLower string, tags []string) string {
	haystack := titleLower
	for _, t := range tags {
		haystack += " " + strings.ToLower(t)
	}
	words := splitWords(haystack)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	for _, sp := range axleSpacings {
		if spacingAliases[sp] != "" {
			continue // marketing names resolve below
		}
		if set[sp] || set[sp+"mm"] {
			return sp
		}
	}
	if set["superboost"] || adjacentWords(words, "super", "boost") {
		return spacingAliases["superboost"]
	}
	if set["boost"] {
		return spacingAliases["boost"]
	}
	return ""
}

func adjacentWords(words []string, a, b string) bool {
	for i := 0; i+1 < len(words); i++ {
		if words[i] == a && words[i+1] == b {
			return true
		}
	}
	return false
}

// mentionsSpacing reports whether the query names the given normalized
// spacing, by millimeter token or by marketing name.
func mentionsSpacing(queryWords map[string]bool, spacing string) bool {
	if queryWords[spacing] || queryWords[spacing+"mm"] {
		return true
	}
	switch spacing {
	case "148":
		return queryWords["boost"] && !queryWords["super"]
	case "157":
		return queryWords["superboost"] || (queryWords["super"] && queryWords["boost"])
	}
	return false
}

func normalizeBrake(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(s, "center"), s == "cl":
		return "centerlock"
	case strings.Contains(s, "bolt"), s == "is", s == "6b":
		return "6-bolt"
	}
	return ""
}

// brakeOf returns the brake interface a product advertises, or "".
func brakeOf(titleLower string, tags []string) string {
	haystack := titleLower
	for _, t := range tags {
		haystack += " " + strings.ToLower(t)
	}
	switch {
	case strings.Contains(haystack, "centerlock"), strings.Contains(haystack, "center lock"), strings.Contains(haystack, "center-lock"):
		return "centerlock"
	case strings.Contains(haystack, "6-bolt"), strings.Contains(haystack, "6 bolt"), strings.Contains(haystack, "six bolt"):
		return "6-bolt"
	}
	return ""
}

func mentionsBrake(queryWords map[string]bool, brake string) bool {
	switch brake {
	case "centerlock":
		return queryWords["centerlock"] || (queryWords["center"] && queryWords["lock"])
	case "6-bolt":
		return queryWords["bolt"]
	}
	return false
}

// splitWords lowercases s and splits it on non-alphanumeric runes.
func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func wordSet(s string) map[string]bool {
	words := splitWords(s)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
