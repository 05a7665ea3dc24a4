package bibjson

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/bibjson/bibtex"
)

func testEntries() []*bibtex.Entry {
	e1 := entry("abc", "article", map[string]string{
		"title":   "T",
		"year":    "2020",
		"author":  "A. One and B. Two",
		"journal": "J",
		"volume":  "3",
		"pages":   "1-10",
	})
	e1.Authors = []string{"A. One", "B. Two"}

	e2 := entry("m1", "misc", map[string]string{
		"title": "Misc Title",
	})

	return []*bibtex.Entry{e1, e2}
}

func TestNewCollection(t *testing.T) {
	c, err := NewCollection(testEntries(), Metadata{
		"collection": "mycoll",
		"source":     "refs.bib",
		"created":    "2026-08-27",
	})
	if err != nil {
		t.Fatalf("NewCollection failed: %v", err)
	}

	if got := c.Metadata["collection"]; got != "mycoll" {
		t.Errorf("metadata collection: got %v, want %q", got, "mycoll")
	}
	if got := c.Metadata["source"]; got != "refs.bib" {
		t.Errorf("metadata source: got %v, want %q", got, "refs.bib")
	}
	if got := c.Metadata["created"]; got != "2026-08-27" {
		t.Errorf("metadata created: got %v, want %q", got, "2026-08-27")
	}
	if got := c.Metadata["records"]; got != 2 {
		t.Errorf("metadata records: got %v, want 2", got)
	}

	if len(c.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(c.Records))
	}
	for i, r := range c.Records {
		if r.Collection != "mycoll" {
			t.Errorf("record %d collection: got %q, want %q", i, r.Collection, "mycoll")
		}
	}

	// Input order is preserved.
	if c.Records[0].Citekey != "abc" || c.Records[1].Citekey != "m1" {
		t.Errorf("record order: got %q, %q", c.Records[0].Citekey, c.Records[1].Citekey)
	}
}

func TestMissingCollectionNameFails(t *testing.T) {
	c, err := NewCollection(testEntries(), Metadata{"source": "refs.bib"})
	if err == nil {
		t.Fatal("expected an error for missing collection name")
	}
	if c != nil {
		t.Errorf("expected nil collection, got %+v", c)
	}

	// An empty name is just as invalid.
	if _, err := NewCollection(nil, Metadata{"collection": ""}); err == nil {
		t.Fatal("expected an error for empty collection name")
	}
}

func TestRecordsCountOverwritesCallerValue(t *testing.T) {
	c, err := NewCollection(testEntries(), Metadata{
		"collection": "mycoll",
		"records":    99,
	})
	if err != nil {
		t.Fatalf("NewCollection failed: %v", err)
	}

	if got := c.Metadata["records"]; got != 2 {
		t.Errorf("metadata records: got %v, want 2", got)
	}
}

func TestIgnoreExceptionsExcluded(t *testing.T) {
	c, err := NewCollection(nil, Metadata{
		"collection":        "mycoll",
		"ignore_exceptions": true,
	})
	if err != nil {
		t.Fatalf("NewCollection failed: %v", err)
	}

	if _, ok := c.Metadata["ignore_exceptions"]; ok {
		t.Error("ignore_exceptions leaked into output metadata")
	}
	if got := c.Metadata["records"]; got != 0 {
		t.Errorf("metadata records: got %v, want 0", got)
	}
}

func TestMetadataValuesNormalizedToJSON(t *testing.T) {
	c, err := NewCollection(nil, Metadata{
		"collection": "mycoll",
		"year":       2024,
		"tags":       []any{"a", "b"},
	})
	if err != nil {
		t.Fatalf("NewCollection failed: %v", err)
	}

	// Values round-trip through their JSON representation.
	if got := c.Metadata["year"]; got != float64(2024) {
		t.Errorf("metadata year: got %v (%T), want 2024", got, got)
	}
	if got, want := c.Metadata["tags"], []any{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("metadata tags: got %v, want %v", got, want)
	}
}

func TestCollectionSerialization(t *testing.T) {
	c, err := NewCollection(testEntries(), Metadata{"collection": "mycoll"})
	if err != nil {
		t.Fatalf("NewCollection failed: %v", err)
	}

	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshaling collection: %v", err)
	}
	s := string(out)

	// Identity fields lead each record.
	if !strings.Contains(s, `{"type":"article","id":"abc","citekey":"abc","collection":"mycoll"`) {
		t.Errorf("identity fields not leading record: %s", s)
	}
	// Absent fields are omitted, not null.
	if strings.Contains(s, "null") {
		t.Errorf("serialized collection contains null placeholders: %s", s)
	}
	if !strings.Contains(s, `"journal":{"name":"J","volume":"3","pages":"1-10"}`) {
		t.Errorf("journal object missing or misshaped: %s", s)
	}
}
