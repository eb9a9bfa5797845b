package catalog

import "strings"

// searchNoise are words stripped from the string sent to the catalog search.
// They carry intent ("is it in stock", front vs rear) that the relevance
// filter handles, but match nothing useful in a product search.
var searchNoise = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "do": true,
	"you": true, "have": true, "any": true, "got": true, "in": true,
	"on": true, "of": true, "for": true, "my": true, "me": true,
	"what": true, "whats": true, "stock": true, "available": true,
	"availability": true, "lead": true, "time": true, "please": true,
	"pair": true, "set": true, "it": true, "there": true,
	"hub": true, "hubs": true, "front": true, "rear": true,
}

// CleanQuery reduces a free-text question to catalog search terms. Position
// and category words are dropped here because they act as filters (see
// Filter), not search terms. If cleaning would leave nothing, the original
// query is returned so the search still has something to chew on.
func CleanQuery(query string) string {
	var kept []string
	for _, w := range strings.Fields(query) {
		if searchNoise[strings.ToLower(strings.Trim(w, ".,!?\"'()"))] {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return strings.TrimSpace(query)
	}
	return strings.Join(kept, " ")
}
