// Package curator implements the curation pipeline: expanding configured
// categories into catalog queries, fetching and normalizing results, scoring
// each item's confidence, filtering by engagement, and collapsing duplicates.
package curator

import (
	"github.com/pcannon/curio/internal/dedup"
	"github.com/pcannon/curio/pkg/archive"
)

// Item is a normalized catalog search result. It lives for the duration of
// one pipeline run; survivors are promoted into the persisted collection.
type Item struct {
	Category    string
	SearchTerm  string
	Identifier  string
	Title       string
	URL         string
	Mediatype   string
	Creator     string
	Publisher   string
	Description string // used only for scoring
	Collections []string
	Formats     []string
	PageCount   int // 0 means unknown
	Downloads   int64
	Favorites   int64

	Confidence Confidence
	Engaged    bool
}

// Confidence is the result of scoring an item.
type Confidence struct {
	Score   int
	Reasons []string
	Passes  bool
}

// Included reports whether the item survives both the engagement filter and
// the confidence threshold.
func (it Item) Included() bool {
	return it.Engaged && it.Confidence.Passes
}

func (it Item) dedupKey() dedup.Key {
	return dedup.Key{Identifier: it.Identifier, Title: it.Title}
}

// newItem normalizes a raw search document into an Item.
func newItem(doc archive.SearchDoc, spec QuerySpec) Item {
	title := doc.Title.String()
	if title == "" {
		title = "Unknown"
	}

	mediatype := doc.Mediatype
	if mediatype == "" {
		mediatype = spec.Mediatype
	}

	return Item{
		Category:    spec.Category,
		SearchTerm:  spec.Term,
		Identifier:  doc.Identifier,
		Title:       title,
		URL:         archive.DetailsURL(doc.Identifier),
		Mediatype:   mediatype,
		Creator:     doc.Creator.String(),
		Publisher:   doc.Publisher.String(),
		Description: doc.Description.String(),
		Collections: doc.Collection,
		Formats:     doc.Format,
		Downloads:   int64(doc.Downloads),
		Favorites:   int64(doc.NumFavorites),
	}
}
