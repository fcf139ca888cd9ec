package curator

import (
	"fmt"
	"strings"

	"github.com/pcannon/curio/internal/config"
)

// QuerySpec is one concrete catalog query: a search term resolved against its
// category's defaults.
type QuerySpec struct {
	Category  string
	Term      string
	Query     string // full query string sent to the search endpoint
	Mediatype string
}

// ExpandQueries turns a category definition into concrete query specs, one
// per term and mediatype. The query text is the term's custom query when set,
// otherwise the term name; the mediatype is the term's override when set,
// otherwise the category default.
func ExpandQueries(cat config.Category) []QuerySpec {
	var specs []QuerySpec

	for _, term := range cat.Terms {
		text := term.Query
		if text == "" {
			text = term.Name
		}

		mediatypes := term.Mediatypes
		if len(mediatypes) == 0 {
			mediatypes = cat.Mediatypes
		}

		for _, mediatype := range mediatypes {
			specs = append(specs, QuerySpec{
				Category:  cat.Name,
				Term:      term.Name,
				Query:     buildQuery(text, mediatype),
				Mediatype: mediatype,
			})
		}
	}

	return specs
}

func buildQuery(text, mediatype string) string {
	if mediatype == "" {
		return fmt.Sprintf("(%s)", text)
	}

	return fmt.Sprintf("(%s) AND mediatype:%s", strings.TrimSpace(text), mediatype)
}
