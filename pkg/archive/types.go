package archive

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaybeList decodes archive.org metadata fields that may arrive as a single
// string, a list of strings, a number, or null depending on the item.
type MaybeList []string

func (m *MaybeList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*m = MaybeList{single}
		return nil
	}

	var many []any
	if err := json.Unmarshal(data, &many); err == nil {
		out := make(MaybeList, 0, len(many))
		for _, v := range many {
			out = append(out, fmt.Sprintf("%v", v))
		}

		*m = out

		return nil
	}

	// Numbers and other scalars are kept as their textual form.
	var scalar any
	if err := json.Unmarshal(data, &scalar); err != nil {
		return err
	}

	*m = MaybeList{fmt.Sprintf("%v", scalar)}

	return nil
}

// String joins the values with ", " the way item pages render them.
func (m MaybeList) String() string {
	return strings.Join(m, ", ")
}

// First returns the first value or the empty string.
func (m MaybeList) First() string {
	if len(m) == 0 {
		return ""
	}

	return m[0]
}

// FlexInt decodes numeric metadata fields that may arrive as a JSON number
// or as a quoted string (imagecount is notorious for this).
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*f = 0
		return nil
	}

	// Some counts come back as floats ("12.0").
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("unparseable numeric field %q: %w", s, err)
	}

	*f = FlexInt(int64(v))

	return nil
}

// SearchDoc is a single row of an advancedsearch response.
type SearchDoc struct {
	Identifier   string    `json:"identifier"`
	Title        MaybeList `json:"title"`
	Mediatype    string    `json:"mediatype"`
	Creator      MaybeList `json:"creator"`
	Publisher    MaybeList `json:"publisher"`
	Description  MaybeList `json:"description"`
	Collection   MaybeList `json:"collection"`
	Format       MaybeList `json:"format"`
	Date         string    `json:"date"`
	Downloads    FlexInt   `json:"downloads"`
	NumFavorites FlexInt   `json:"num_favorites"`
}

type searchResponse struct {
	Response struct {
		NumFound int         `json:"numFound"`
		Docs     []SearchDoc `json:"docs"`
	} `json:"response"`
}

// ItemMetadata is the subset of the /metadata/<identifier> payload the
// curator consumes.
type ItemMetadata struct {
	Metadata metadataFields `json:"metadata"`
	Files    []File         `json:"files"`
}

type metadataFields struct {
	Identifier string    `json:"identifier"`
	Imagecount FlexInt   `json:"imagecount"`
	Pages      FlexInt   `json:"pages"`
	NumPages   FlexInt   `json:"num_pages"`
	Publisher  MaybeList `json:"publisher"`
}

// File describes one file belonging to an item.
type File struct {
	Name   string  `json:"name"`
	Format string  `json:"format"`
	Size   FlexInt `json:"size"`
}

var pageImageExtensions = []string{".jp2", ".jpg", ".jpeg", ".png", ".tif", ".tiff"}

// PageCount extracts a page count from metadata fields, falling back to
// counting page-image files for scanned items. Returns 0 when undeterminable.
func (im *ItemMetadata) PageCount() int {
	for _, v := range []FlexInt{im.Metadata.Imagecount, im.Metadata.Pages, im.Metadata.NumPages} {
		if v > 0 {
			return int(v)
		}
	}

	images := 0

	for _, f := range im.Files {
		name := strings.ToLower(f.Name)
		for _, ext := range pageImageExtensions {
			if strings.HasSuffix(name, ext) {
				images++
				break
			}
		}
	}

	return images
}

// Formats returns the distinct file formats present in the item.
func (im *ItemMetadata) Formats() []string {
	seen := make(map[string]bool)

	var formats []string

	for _, f := range im.Files {
		if f.Format == "" || seen[f.Format] {
			continue
		}

		seen[f.Format] = true

		formats = append(formats, f.Format)
	}

	return formats
}

// APIError represents a non-2xx response from the archive.org API.
type APIError struct {
	Operation string
	Target    string
	Status    int
	Body      string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 120 {
		body = body[:120] + "..."
	}

	return fmt.Sprintf("archive.org %s failed for %q: HTTP %d: %s", e.Operation, e.Target, e.Status, body)
}
