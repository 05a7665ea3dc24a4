// Package bibjson maps decoded BibTeX entries onto the BibJSON
// collection schema.
//
// Each entry type has its own conversion rule: a set of required
// fields, a set of scalar fields copied verbatim, and compound fields
// (author, editor, publisher, journal) restructured into nested
// objects. Missing required fields and unknown entry types never abort
// a conversion; they are reported as error-level diagnostics and the
// record is built from whatever fields are available. The one hard
// failure in the package is building a collection without a
// collection name.
package bibjson

// Name is a single named entity, one author or editor.
type Name struct {
	Name string `json:"name"`
}

// Publisher is the nested publisher object, built from the publisher
// and address fields.
type Publisher struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Journal is the nested journal object. It is only built when the
// source entry carries both journal and volume.
type Journal struct {
	Name   string `json:"name"`
	Volume string `json:"volume"`
	Number string `json:"number,omitempty"`
	Pages  string `json:"pages,omitempty"`
	Month  string `json:"month,omitempty"`
}

// Record is one BibJSON record.
//
// id and citekey both start out as the citation key; id exists so a
// persistence layer can assign its own identifier later without
// losing the original key. Identity fields are declared first so
// serialized records stay readable and diffable.
type Record struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Citekey    string `json:"citekey"`
	Collection string `json:"collection"`

	Title        string `json:"title,omitempty"`
	Booktitle    string `json:"booktitle,omitempty"`
	Howpublished string `json:"howpublished,omitempty"`
	Organization string `json:"organization,omitempty"`
	Institution  string `json:"institution,omitempty"`
	School       string `json:"school,omitempty"`
	Address      string `json:"address,omitempty"`
	Chapter      string `json:"chapter,omitempty"`
	Pages        string `json:"pages,omitempty"`
	Volume       string `json:"volume,omitempty"`
	Number       string `json:"number,omitempty"`
	Series       string `json:"series,omitempty"`
	Edition      string `json:"edition,omitempty"`
	Month        string `json:"month,omitempty"`
	Year         string `json:"year,omitempty"`
	Note         string `json:"note,omitempty"`
	Key          string `json:"key,omitempty"`

	Author    []Name     `json:"author,omitempty"`
	Editor    []Name     `json:"editor,omitempty"`
	Publisher *Publisher `json:"publisher,omitempty"`
	Journal   *Journal   `json:"journal,omitempty"`
}

// Collection is the top-level BibJSON container: caller-supplied
// metadata plus the converted records in source order.
type Collection struct {
	Metadata map[string]any `json:"metadata"`
	Records  []*Record      `json:"records"`
}
