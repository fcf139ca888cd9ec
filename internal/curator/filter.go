package curator

import (
	"fmt"
	"strings"

	"github.com/pcannon/curio/internal/config"
)

// MeetsEngagement checks minimum download/favorite thresholds. The comparison
// is strict: an item exactly at a threshold is kept. Filtering never mutates
// scores, so diagnostic output can still report filtered-out items.
func MeetsEngagement(item Item, cfg config.FilterConfig) (bool, string) {
	if item.Downloads < int64(cfg.MinDownloads) {
		return false, fmt.Sprintf("downloads (%d) below minimum (%d)", item.Downloads, cfg.MinDownloads)
	}

	if item.Favorites < int64(cfg.MinFavorites) {
		return false, fmt.Sprintf("favorites (%d) below minimum (%d)", item.Favorites, cfg.MinFavorites)
	}

	return true, ""
}

// MatchesIntent is a cheap relevance check that weeds out false positives
// from broad queries: some significant word of the search term must appear in
// the title or creator.
func MatchesIntent(item Item, term string) bool {
	title := strings.ToLower(item.Title)
	creator := strings.ToLower(item.Creator)

	significant := 0

	for _, word := range strings.Fields(strings.ToLower(term)) {
		if len(word) <= 3 {
			continue
		}

		significant++

		if strings.Contains(title, word) || strings.Contains(creator, word) {
			return true
		}
	}

	// A term of only short words carries no usable signal; keep the item.
	return significant == 0
}
