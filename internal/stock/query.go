package stock

import "strings"

// defaultQuery keeps searches inside the niche when nothing else matches.
const defaultQuery = "books reading"

// queryDictionary maps brief trigger words to stock search phrases that are
// known to return usable vertical footage. Ordered so matching is
// deterministic.
var queryDictionary = []struct {
	trigger string
	query   string
}{
	{"habit", "morning routine sunrise"},
	{"success", "city skyline ambition"},
	{"money", "desk finance counting"},
	{"invest", "stock market charts"},
	{"love", "couple walking sunset"},
	{"heart", "hands holding warm light"},
	{"grief", "rain window quiet"},
	{"war", "storm clouds dramatic sky"},
	{"crime", "night city neon street"},
	{"mystery", "fog forest path"},
	{"mind", "calm water meditation"},
	{"psychology", "abstract ink water"},
	{"focus", "desk lamp study night"},
	{"history", "old library archive"},
	{"science", "laboratory glassware"},
	{"space", "stars night sky"},
	{"nature", "forest mountain landscape"},
	{"ocean", "waves aerial sea"},
	{"journey", "open road horizon"},
	{"travel", "airport window wanderlust"},
	{"food", "cozy kitchen cooking"},
	{"sleep", "bedroom soft morning light"},
	{"fantasy", "castle misty mountains"},
	{"philosophy", "statue museum light"},
}

// BuildQuery matches the curated dictionary against the lowercased brief
// and falls back to the generic topic terms.
func BuildQuery(title, description string) string {
	haystack := strings.ToLower(title + " " + description)
	for _, entry := range queryDictionary {
		if strings.Contains(haystack, entry.trigger) {
			return entry.query
		}
	}
	return defaultQuery
}
