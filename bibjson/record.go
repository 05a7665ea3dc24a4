package bibjson

import (
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/bibjson/bibtex"
)

// Mapper converts decoded BibTeX entries to BibJSON records. Missing
// required fields and unknown entry types are reported through the
// mapper's logger, never as errors.
type Mapper struct {
	logger *slog.Logger
}

// NewMapper returns a mapper that reports diagnostics to the given
// logger, or to slog.Default() when logger is nil.
func NewMapper(logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{logger: logger}
}

// fillFunc copies the type-specific fields of a decoded entry onto a
// record.
type fillFunc func(m *Mapper, r *Record, e *bibtex.Entry)

// fillers maps each known entry type to its conversion rule. Absence
// of a table entry is the unknown-type branch, not an error.
var fillers = map[string]fillFunc{
	"article":       (*Mapper).fillArticle,
	"book":          (*Mapper).fillBook,
	"booklet":       (*Mapper).fillBooklet,
	"conference":    (*Mapper).fillInproceedings,
	"electronic":    (*Mapper).fillElectronic,
	"inbook":        (*Mapper).fillInbook,
	"incollection":  (*Mapper).fillIncollection,
	"inproceedings": (*Mapper).fillInproceedings,
	"manual":        (*Mapper).fillManual,
	"mastersthesis": (*Mapper).fillPhdthesis,
	"misc":          (*Mapper).fillMisc,
	"periodical":    (*Mapper).fillPeriodical,
	"phdthesis":     (*Mapper).fillPhdthesis,
	"proceedings":   (*Mapper).fillProceedings,
	"techreport":    (*Mapper).fillTechreport,
	"unpublished":   (*Mapper).fillUnpublished,
}

// Record maps one decoded entry to a BibJSON record. An entry with an
// unrecognized type yields a record holding only the identity fields.
func (m *Mapper) Record(e *bibtex.Entry, collection string) *Record {
	r := &Record{
		Type:       e.Type,
		ID:         e.Key,
		Citekey:    e.Key,
		Collection: collection,
	}

	fill, ok := fillers[e.Type]
	if !ok {
		m.logger.Error("no conversion rule for entry type",
			"citekey", e.Key, "type", e.Type)
		return r
	}

	fill(m, r, e)
	return r
}

func (m *Mapper) fillArticle(r *Record, e *bibtex.Entry) {
	m.requireAll(e, "title", "year", "author", "journal")

	copyFields(r, e, "title", "year", "note", "key")

	fillAuthor(r, e)
	fillJournal(r, e)
}

func (m *Mapper) fillBook(r *Record, e *bibtex.Entry) {
	m.requireAll(e, "title", "year", "publisher")
	m.requireAny(e, "author", "editor")

	copyFields(r, e, "title", "year", "note", "key", "volume", "number",
		"series", "edition", "month")

	fillAuthor(r, e)
	fillEditor(r, e)
	fillPublisher(r, e)
}

func (m *Mapper) fillBooklet(r *Record, e *bibtex.Entry) {
	m.requireAll(e, "title")

	copyFields(r, e, "title", "howpublished", "address", "month", "year",
		"note", "key")

	fillAuthor(r, e)
}

func (m *Mapper) fillElectronic(r *Record, e *bibtex.Entry) {
	m.requireAll(e, "author", "title", "howpublished")

	copyFields(r, e, "title", "howpublished", "month", "year", "note", "key")

	fillAuthor(r, e)
}

func (m *Mapper) fillInbook(r *Record, e *bibtex.Entry) {
	m.requireAny(e, "author", "editor")
	m.requireAll(e, "title", "year", "publisher")

	copyFields(r, e, "title", "year", "note", "key", "volume", "number",
		"series", "edition", "month")

	m.copyAnyOf(r, e, "chapter", "pages")

	fillAuthor(r, e)
	fillEditor(r, e)
	fillPublisher(r, e)
}

func (m *Mapper) fillIncollection(r *Record, e *bibtex.Entry) {
	m.requireAll(e, "author", "publisher", "title", "year", "booktitle")

	copyFields(r, e, "title", "year", "booktitle", "note", "key", "volume",
		"number", "series", "chapter", "pages", "address", "edition", "month")

	fillAuthor(r, e)
	fillPublisher(r, e)
	fillEditor(r, e)
}

func (m *Mapper) fillInproceedings(r *Record, e *bibtex.Entry) {
	m.requireAll(e, "author", "title", "year", "booktitle")

	copyFields(r, e, "title", "year", "booktitle", "note", "key", "volume",
		"number", "series", "organization", "pages", "address", "edition",
		"month")

	fillAuthor(r, e)
	fillEditor(r, e)
	fillPublisher(r, e)
}

func (m *Mapper) fillManual(r *Record, e *bibtex.Entry) {
	m.requireAll(e, "author", "title")

	copyFields(r, e, "title", "address", "organization", "edition", "month",
		"year", "note", "key")

	fillAuthor(r, e)
}

func (m *Mapper) fillMisc(r *Record, e *bibtex.Entry) {
	copyFields(r, e, "title", "howpublished", "month", "year", "note", "key")

	fillAuthor(r, e)
}

func (m *Mapper) fillPeriodical(r *Record, e *bibtex.Entry) {
	m.requireAll(e, "title", "year", "number")

	copyFields(r, e, "title", "year", "number", "organization", "note", "key")

	fillAuthor(r, e)
	fillPublisher(r, e)
	fillJournal(r, e)
}

func (m *Mapper) fillPhdthesis(r *Record, e *bibtex.Entry) {
	m.requireAll(e, "author", "title", "school", "year")

	copyFields(r, e, "title", "school", "year", "address", "month", "note",
		"key")

	fillAuthor(r, e)
}

func (m *Mapper) fillProceedings(r *Record, e *bibtex.Entry) {
	m.requireAll(e, "title", "year")

	copyFields(r, e, "title", "year", "volume", "number", "series", "address",
		"month", "organization", "note", "key")

	fillEditor(r, e)
	fillPublisher(r, e)
}

func (m *Mapper) fillTechreport(r *Record, e *bibtex.Entry) {
	m.requireAll(e, "author", "title", "institution", "year")

	copyFields(r, e, "title", "institution", "year", "number", "address",
		"month", "note", "key")

	fillAuthor(r, e)
	fillEditor(r, e)
}

func (m *Mapper) fillUnpublished(r *Record, e *bibtex.Entry) {
	m.requireAll(e, "author", "title", "note")

	copyFields(r, e, "title", "note", "month", "year", "key")

	fillAuthor(r, e)
}

// requireAll logs one diagnostic unless every named field is present.
func (m *Mapper) requireAll(e *bibtex.Entry, fields ...string) {
	for _, f := range fields {
		if !e.Has(f) {
			m.logger.Error("missing required fields",
				"citekey", e.Key,
				"require", "all",
				"fields", strings.Join(fields, ", "))
			return
		}
	}
}

// requireAny logs one diagnostic unless at least one named field is
// present.
func (m *Mapper) requireAny(e *bibtex.Entry, fields ...string) {
	for _, f := range fields {
		if e.Has(f) {
			return
		}
	}
	m.logger.Error("missing required fields",
		"citekey", e.Key,
		"require", "at least one",
		"fields", strings.Join(fields, ", "))
}

// copyAnyOf copies the named fields and requires at least one of them
// to be present.
func (m *Mapper) copyAnyOf(r *Record, e *bibtex.Entry, fields ...string) {
	m.requireAny(e, fields...)
	copyFields(r, e, fields...)
}

// scalarFields maps BibTeX field names to record setters.
var scalarFields = map[string]func(*Record, string){
	"title":        func(r *Record, v string) { r.Title = v },
	"booktitle":    func(r *Record, v string) { r.Booktitle = v },
	"howpublished": func(r *Record, v string) { r.Howpublished = v },
	"organization": func(r *Record, v string) { r.Organization = v },
	"institution":  func(r *Record, v string) { r.Institution = v },
	"school":       func(r *Record, v string) { r.School = v },
	"address":      func(r *Record, v string) { r.Address = v },
	"chapter":      func(r *Record, v string) { r.Chapter = v },
	"pages":        func(r *Record, v string) { r.Pages = v },
	"volume":       func(r *Record, v string) { r.Volume = v },
	"number":       func(r *Record, v string) { r.Number = v },
	"series":       func(r *Record, v string) { r.Series = v },
	"edition":      func(r *Record, v string) { r.Edition = v },
	"month":        func(r *Record, v string) { r.Month = v },
	"year":         func(r *Record, v string) { r.Year = v },
	"note":         func(r *Record, v string) { r.Note = v },
	"key":          func(r *Record, v string) { r.Key = v },
}

// copyFields copies each listed field that is present in the entry
// verbatim onto the record. Absent fields are simply omitted.
func copyFields(r *Record, e *bibtex.Entry, fields ...string) {
	for _, f := range fields {
		if v, ok := e.Fields[f]; ok {
			scalarFields[f](r, v)
		}
	}
}

func fillAuthor(r *Record, e *bibtex.Entry) {
	if !e.Has("author") {
		return
	}
	r.Author = nameList(e.Authors)
}

func fillEditor(r *Record, e *bibtex.Entry) {
	if !e.Has("editor") {
		return
	}
	r.Editor = nameList(e.Editors)
}

func nameList(names []string) []Name {
	list := make([]Name, 0, len(names))
	for _, n := range names {
		list = append(list, Name{Name: n})
	}
	return list
}

// fillPublisher builds the nested publisher object, folding the
// top-level address field into it when present. Types that also list
// address as a scalar field keep the top-level copy too.
func fillPublisher(r *Record, e *bibtex.Entry) {
	if !e.Has("publisher") {
		return
	}
	p := &Publisher{Name: e.Get("publisher")}
	if e.Has("address") {
		p.Address = e.Get("address")
	}
	r.Publisher = p
}

// fillJournal builds the nested journal object. It requires both
// journal and volume; with either one missing the object is omitted
// entirely, even when number, pages or month are present.
func fillJournal(r *Record, e *bibtex.Entry) {
	if !e.Has("journal") || !e.Has("volume") {
		return
	}
	j := &Journal{
		Name:   e.Get("journal"),
		Volume: e.Get("volume"),
	}
	if e.Has("number") {
		j.Number = e.Get("number")
	}
	if e.Has("pages") {
		j.Pages = e.Get("pages")
	}
	if e.Has("month") {
		j.Month = e.Get("month")
	}
	r.Journal = j
}
