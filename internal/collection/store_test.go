package collection

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pcannon/curio/internal/curator"
)

func TestReadMissingFile(t *testing.T) {
	rows, err := Read(filepath.Join(t.TempDir(), "nope.csv"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if rows != nil {
		t.Errorf("Read() = %v, want nil for missing file", rows)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "collection.csv")

	rows := []Row{
		{
			Category:   "beat-generation",
			SearchTerm: "naked lunch",
			Title:      "Naked Lunch",
			Identifier: "nakedlunch00burr",
			URL:        "https://archive.org/details/nakedlunch00burr",
			Mediatype:  "texts",
			Score:      85,
			Creator:    "Burroughs, William S.",
			Publisher:  "Grove Press",
			PageCount:  255,
		},
		{
			Category:   "beat-generation",
			SearchTerm: "soft machine",
			Title:      "The Soft Machine",
			Identifier: "softmachine00burr",
			URL:        "https://archive.org/details/softmachine00burr",
			Mediatype:  "texts",
			Score:      70,
		},
	}

	if err := Write(path, rows); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(got) != len(rows) {
		t.Fatalf("Read() returned %d rows, want %d", len(got), len(rows))
	}

	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}
}

func TestWriteOmitsUnknownPageCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.csv")

	if err := Write(path, []Row{{Identifier: "x", Title: "X", Score: 70}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	if !strings.HasSuffix(lines[1], ",") {
		t.Errorf("page_count column should be empty for unknown counts, got %q", lines[1])
	}
}

func TestReadReorderedColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.csv")

	data := "identifier,title,confidence_score,category\n" +
		"junkie00burr,Junkie,75,beat-generation\n"

	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	want := Row{Identifier: "junkie00burr", Title: "Junkie", Score: 75, Category: "beat-generation"}
	if rows[0] != want {
		t.Errorf("row = %+v, want %+v", rows[0], want)
	}
}

func TestReadClampsEditedScores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.csv")

	data := "identifier,title,confidence_score\n" +
		"a,A,250\n" +
		"b,B,-5\n"

	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if rows[0].Score != 100 || rows[1].Score != 0 {
		t.Errorf("scores = %d, %d, want 100, 0", rows[0].Score, rows[1].Score)
	}
}

func TestReadRejectsMissingIdentifierColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.csv")

	if err := os.WriteFile(path, []byte("title,confidence_score\nA,70\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Read(path); err == nil {
		t.Error("Read() succeeded without an identifier column")
	}
}

func TestReadRejectsBadNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.csv")

	if err := os.WriteFile(path, []byte("identifier,confidence_score\na,lots\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Read(path); err == nil {
		t.Error("Read() accepted a non-numeric confidence_score")
	}
}

func TestWriteLeavesExistingFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "collection.csv")

	if err := Write(path, []Row{{Identifier: "keep", Title: "Keep", Score: 70}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// A directory at the target path makes the final rename fail.
	blocked := filepath.Join(dir, "blocked")
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Write(blocked, []Row{{Identifier: "x"}}); err == nil {
		t.Fatal("Write() over a directory should fail")
	}

	rows, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(rows) != 1 || rows[0].Identifier != "keep" {
		t.Errorf("original collection was disturbed: %+v", rows)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".collection-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestFromItem(t *testing.T) {
	item := curator.Item{
		Category:   "beat-generation",
		SearchTerm: "naked lunch",
		Identifier: "nakedlunch00burr",
		Title:      "Naked Lunch",
		URL:        "https://archive.org/details/nakedlunch00burr",
		Mediatype:  "texts",
		Creator:    "Burroughs, William S.",
		Publisher:  "Grove Press",
		PageCount:  255,
		Confidence: curator.Confidence{Score: 85},
	}

	row := FromItem(item)

	want := Row{
		Category:   "beat-generation",
		SearchTerm: "naked lunch",
		Title:      "Naked Lunch",
		Identifier: "nakedlunch00burr",
		URL:        "https://archive.org/details/nakedlunch00burr",
		Mediatype:  "texts",
		Score:      85,
		Creator:    "Burroughs, William S.",
		Publisher:  "Grove Press",
		PageCount:  255,
	}

	if row != want {
		t.Errorf("FromItem() = %+v, want %+v", row, want)
	}
}
