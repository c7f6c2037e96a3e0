package normalize

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes the payload held by a Value.
type Kind int

const (
	// KindNotObserved marks a field the surface did not show at all.
	// Distinct from an observed empty or zero value.
	KindNotObserved Kind = iota
	KindText
	KindNumber
	KindTime
	// KindInvalid holds raw text that failed strict parsing. Only produced
	// by lenient assembly; strict normalization returns an error instead.
	KindInvalid
)

// Value is the canonical result of normalizing one raw field.
type Value struct {
	kind Kind
	text string
	num  decimal.Decimal
	ts   time.Time
}

func NotObserved() Value          { return Value{kind: KindNotObserved} }
func Text(s string) Value         { return Value{kind: KindText, text: s} }
func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}
func Timestamp(t time.Time) Value { return Value{kind: KindTime, ts: t.UTC()} }
func Invalid(raw string) Value    { return Value{kind: KindInvalid, text: raw} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) Observed() bool { return v.kind != KindNotObserved }

// Decimal returns the numeric payload. The second result is false when the
// value holds no number.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.kind != KindNumber {
		return decimal.Decimal{}, false
	}
	return v.num, true
}

func (v Value) Time() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.ts, true
}

// Equal compares two values exactly. Numeric values compare by magnitude
// (1.50 equals 1.5); tolerance-aware comparison lives in the reconcile
// package.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNotObserved:
		return true
	case KindNumber:
		return v.num.Equal(o.num)
	case KindTime:
		return v.ts.Equal(o.ts)
	default:
		return v.text == o.text
	}
}

// String renders the value for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindNotObserved:
		return "<not observed>"
	case KindNumber:
		return v.num.String()
	case KindTime:
		return v.ts.Format("2006-01-02 15:04:05")
	case KindInvalid:
		return "<unparsable: " + v.text + ">"
	default:
		return v.text
	}
}
