package order

import (
	"errors"
	"fmt"

	"tradecheck/internal/normalize"
)

// RawField is one unparsed cell as captured by a page object. Negative is
// the caller-supplied loss cue (§ sign rule in normalize).
type RawField struct {
	Text     string
	Negative bool
}

// Fields is one captured row keyed by canonical field.
type Fields map[Field]RawField

// IncompleteRecordError marks a row whose order_id could not be parsed.
// Such rows carry no identity and cannot participate in matching; callers
// report them as warnings rather than hard failures.
type IncompleteRecordError struct {
	Source string
	Cause  error
}

func (e *IncompleteRecordError) Error() string {
	return fmt.Sprintf("record from %s has no parsable order_id: %v", e.Source, e.Cause)
}

func (e *IncompleteRecordError) Unwrap() error { return e.Cause }

// Record is the canonical snapshot of one order on one surface. Fields the
// surface does not show hold the NotObserved sentinel.
type Record struct {
	Source string
	values map[Field]normalize.Value
}

// OrderID returns the join key. Always observed for assembled records.
func (r Record) OrderID() string {
	return r.values[FieldOrderID].String()
}

// Value returns the normalized value for a field; NotObserved when the
// surface never reported it.
func (r Record) Value(f Field) normalize.Value {
	if v, ok := r.values[f]; ok {
		return v
	}
	return normalize.NotObserved()
}

// ObservedFields lists fields this record actually carries, in canonical
// order.
func (r Record) ObservedFields() []Field {
	var out []Field
	for _, f := range AllFields() {
		if r.Value(f).Observed() {
			out = append(out, f)
		}
	}
	return out
}

// Assemble normalizes one raw row into a Record. Only an unparsable
// order_id is fatal as *IncompleteRecordError; any other present-but-
// malformed value propagates as *normalize.FormatError, never as a silent
// zero.
func Assemble(fields Fields, source string) (Record, error) {
	rec := Record{Source: source, values: make(map[Field]normalize.Value, len(fields))}
	idRaw, ok := fields[FieldOrderID]
	if !ok || idRaw.Text == "" {
		return Record{}, &IncompleteRecordError{Source: source, Cause: errors.New("order_id absent")}
	}
	idVal, err := normalize.Normalize(idRaw.Text, FieldOrderID.Class())
	if err != nil || !idVal.Observed() {
		if err == nil {
			err = errors.New("order_id empty after normalization")
		}
		return Record{}, &IncompleteRecordError{Source: source, Cause: err}
	}
	rec.values[FieldOrderID] = idVal
	for f, raw := range fields {
		if f == FieldOrderID {
			continue
		}
		val, err := normalizeField(f, raw)
		if err != nil {
			return Record{}, err
		}
		rec.values[f] = val
	}
	return rec, nil
}

// AssembleLenient behaves like Assemble but keeps malformed non-identity
// values as Invalid instead of failing, so the reconciliation engine can
// report them as unparsable mismatches.
func AssembleLenient(fields Fields, source string) (Record, error) {
	rec, err := Assemble(fields, source)
	if err == nil {
		return rec, nil
	}
	var incomplete *IncompleteRecordError
	if errors.As(err, &incomplete) {
		return Record{}, err
	}
	rec = Record{Source: source, values: make(map[Field]normalize.Value, len(fields))}
	for f, raw := range fields {
		val, ferr := normalizeField(f, raw)
		if ferr != nil {
			val = normalize.Invalid(raw.Text)
		}
		rec.values[f] = val
	}
	return rec, nil
}

func normalizeField(f Field, raw RawField) (normalize.Value, error) {
	var hints []normalize.Hint
	if raw.Negative {
		hints = append(hints, normalize.WithNegative())
	}
	return normalize.Normalize(raw.Text, f.Class(), hints...)
}
