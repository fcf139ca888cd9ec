// Package collection persists curated items as a row-oriented CSV table. The
// file is meant to be edited by hand between runs: reads are header-driven
// and tolerant of reordered columns, and writes are atomic so a failed merge
// never corrupts the previous collection.
package collection

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pcannon/curio/internal/curator"
)

// Columns is the persisted schema, in write order.
var Columns = []string{
	"category",
	"search_term",
	"title",
	"identifier",
	"url",
	"mediatype",
	"confidence_score",
	"creator",
	"publisher",
	"page_count",
}

// Row is one persisted collection entry.
type Row struct {
	Category   string
	SearchTerm string
	Title      string
	Identifier string
	URL        string
	Mediatype  string
	Score      int
	Creator    string
	Publisher  string
	PageCount  int // 0 means unknown
}

// FromItem promotes a pipeline item into a collection row.
func FromItem(item curator.Item) Row {
	return Row{
		Category:   item.Category,
		SearchTerm: item.SearchTerm,
		Title:      item.Title,
		Identifier: item.Identifier,
		URL:        item.URL,
		Mediatype:  item.Mediatype,
		Score:      item.Confidence.Score,
		Creator:    item.Creator,
		Publisher:  item.Publisher,
		PageCount:  item.PageCount,
	}
}

// Read loads the collection at path. A missing file is an empty collection,
// not an error. Column order follows the header so externally reordered
// files still load.
func Read(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("open collection: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse collection %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}

	if _, ok := index["identifier"]; !ok {
		return nil, fmt.Errorf("collection %s has no identifier column", path)
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}

		return record[i]
	}

	rows := make([]Row, 0, len(records)-1)

	for n, record := range records[1:] {
		row := Row{
			Category:   field(record, "category"),
			SearchTerm: field(record, "search_term"),
			Title:      field(record, "title"),
			Identifier: field(record, "identifier"),
			URL:        field(record, "url"),
			Mediatype:  field(record, "mediatype"),
			Creator:    field(record, "creator"),
			Publisher:  field(record, "publisher"),
		}

		row.Score, err = parseCount(field(record, "confidence_score"))
		if err != nil {
			return nil, fmt.Errorf("collection %s row %d: bad confidence_score: %w", path, n+2, err)
		}

		// Clamp scores a human edit may have pushed out of range.
		if row.Score < 0 {
			row.Score = 0
		}

		if row.Score > 100 {
			row.Score = 100
		}

		row.PageCount, err = parseCount(field(record, "page_count"))
		if err != nil {
			return nil, fmt.Errorf("collection %s row %d: bad page_count: %w", path, n+2, err)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	return strconv.Atoi(s)
}

// Write persists rows atomically: the new collection is written to a
// temporary file in the target directory and renamed over the old one, so a
// failure at any point leaves the previous file intact.
func Write(path string, rows []Row) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create collection directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".collection-*.csv")
	if err != nil {
		return fmt.Errorf("create temp collection: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	writer := csv.NewWriter(tmp)

	if err := writer.Write(Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("write collection header: %w", err)
	}

	for _, row := range rows {
		pageCount := ""
		if row.PageCount > 0 {
			pageCount = strconv.Itoa(row.PageCount)
		}

		record := []string{
			row.Category,
			row.SearchTerm,
			row.Title,
			row.Identifier,
			row.URL,
			row.Mediatype,
			strconv.Itoa(row.Score),
			row.Creator,
			row.Publisher,
			pageCount,
		}

		if err := writer.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("write collection row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush collection: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp collection: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("commit collection: %w", err)
	}

	return nil
}
