package bibjson

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lehigh-university-libraries/bibjson/bibtex"
)

// Metadata holds caller-supplied collection metadata. The "collection"
// key is required and names the collection; "ignore_exceptions" is
// reserved and never copied to the output.
type Metadata map[string]any

const (
	metaCollection       = "collection"
	metaIgnoreExceptions = "ignore_exceptions"
	metaRecords          = "records"
)

// NewCollection builds a BibJSON collection from decoded entries using
// the default logger for diagnostics.
func NewCollection(entries []*bibtex.Entry, meta Metadata) (*Collection, error) {
	return NewMapper(nil).Collection(entries, meta)
}

// Collection builds a BibJSON collection: one record per entry, in
// entry order, wrapped with the supplied metadata. The records count
// in the output metadata is always computed from the built records,
// even when the caller supplies one.
//
// A missing or empty "collection" metadata value is the one hard
// failure in the package.
func (m *Mapper) Collection(entries []*bibtex.Entry, meta Metadata) (*Collection, error) {
	name, ok := meta[metaCollection].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("metadata: %q value is required", metaCollection)
	}

	c := &Collection{
		Metadata: make(map[string]any, len(meta)+1),
		Records:  make([]*Record, 0, len(entries)),
	}

	for k, v := range meta {
		if k == metaIgnoreExceptions {
			continue
		}
		c.Metadata[k] = metaValue(v)
	}

	for _, e := range entries {
		c.Records = append(c.Records, m.Record(e, name))
	}

	c.Metadata[metaRecords] = len(c.Records)

	return c, nil
}

// metaValue normalizes a metadata value to its JSON representation, so
// arbitrary caller-supplied values always serialize cleanly.
func metaValue(v any) any {
	pv, err := structpb.NewValue(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return pv.AsInterface()
}
