package order

import (
	"errors"
	"fmt"
	"strings"
)

// ObservationSet is a named, ordered batch of records captured from exactly
// one surface at one instant. Immutable once built.
type ObservationSet struct {
	source  string
	records []Record
}

// NewObservationSet builds a set from already-assembled records. Records
// tagged with a different source are rejected: mixing surfaces in one set
// would make diagnostics lie about provenance.
func NewObservationSet(source string, records []Record) (ObservationSet, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return ObservationSet{}, errors.New("observation set requires a source label")
	}
	copied := make([]Record, len(records))
	for i, rec := range records {
		if rec.Source != source {
			return ObservationSet{}, fmt.Errorf("record %d tagged %q, set is %q", i, rec.Source, source)
		}
		copied[i] = rec
	}
	return ObservationSet{source: source, records: copied}, nil
}

// Capture assembles raw rows into a set. Rows without a parsable order_id
// are skipped and returned as warnings (a row may legitimately still be
// rendering); any other normalization failure aborts the capture.
func Capture(source string, rows []Fields) (ObservationSet, []error, error) {
	var (
		records  []Record
		warnings []error
	)
	for _, row := range rows {
		rec, err := Assemble(row, source)
		if err != nil {
			var incomplete *IncompleteRecordError
			if errors.As(err, &incomplete) {
				warnings = append(warnings, err)
				continue
			}
			return ObservationSet{}, warnings, err
		}
		records = append(records, rec)
	}
	set, err := NewObservationSet(source, records)
	return set, warnings, err
}

func (s ObservationSet) Source() string { return s.source }
func (s ObservationSet) Len() int       { return len(s.records) }

// Records returns a copy; the set itself stays immutable.
func (s ObservationSet) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// At returns the record at index i in capture order.
func (s ObservationSet) At(i int) Record { return s.records[i] }

// ByOrderID indexes records by their join key. Duplicate ids keep the first
// occurrence and report the rest.
func (s ObservationSet) ByOrderID() (map[string]Record, []string) {
	idx := make(map[string]Record, len(s.records))
	var dupes []string
	for _, rec := range s.records {
		id := rec.OrderID()
		if _, seen := idx[id]; seen {
			dupes = append(dupes, id)
			continue
		}
		idx[id] = rec
	}
	return idx, dupes
}
