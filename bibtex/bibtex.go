// Package bibtex parses BibTeX bibliography files into decoded entries.
//
// Entries come out normalized the way downstream mapping expects:
// field names are lowercased, LaTeX escape sequences are converted to
// Unicode (unless disabled), author and editor fields are split into
// ordered name lists, and page ranges use a double hyphen.
package bibtex

import "bytes"

// Version documents the BibTeX specification this parser targets.
const Version = "bibtex-1988"

// Entry is a single decoded BibTeX entry.
type Entry struct {
	// Key is the citation key.
	Key string

	// Type is the lowercased entry type (article, book, ...).
	Type string

	// Fields maps lowercased field names to resolved values.
	Fields map[string]string

	// Authors, Editors and Keywords hold the split forms of the
	// corresponding fields, in source order.
	Authors  []string
	Editors  []string
	Keywords []string
}

// Has reports whether the entry has a value for the named field.
func (e *Entry) Has(name string) bool {
	_, ok := e.Fields[name]
	return ok
}

// Get returns the value of the named field, or "" if absent.
func (e *Entry) Get(name string) string {
	return e.Fields[name]
}

// Options configures parsing.
type Options struct {
	// ConvertToUnicode converts LaTeX escape sequences (\'e, \"o, \ss, ...)
	// in field values to their Unicode equivalents and drops the
	// grouping braces LaTeX markup leaves behind.
	ConvertToUnicode bool
}

// DefaultOptions returns the default parse options.
func DefaultOptions() *Options {
	return &Options{ConvertToUnicode: true}
}

// Detect reports whether the input looks like BibTeX.
func Detect(peek []byte) bool {
	peek = bytes.TrimSpace(peek)
	if len(peek) == 0 {
		return false
	}

	bibtexPatterns := [][]byte{
		[]byte("@article"),
		[]byte("@book"),
		[]byte("@booklet"),
		[]byte("@conference"),
		[]byte("@electronic"),
		[]byte("@inbook"),
		[]byte("@incollection"),
		[]byte("@inproceedings"),
		[]byte("@manual"),
		[]byte("@mastersthesis"),
		[]byte("@misc"),
		[]byte("@periodical"),
		[]byte("@phdthesis"),
		[]byte("@proceedings"),
		[]byte("@techreport"),
		[]byte("@unpublished"),
		[]byte("@string"),
		[]byte("@preamble"),
	}

	lowerPeek := bytes.ToLower(peek)
	for _, pattern := range bibtexPatterns {
		if bytes.Contains(lowerPeek, pattern) {
			return true
		}
	}

	return false
}
