package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatError reports a raw value that matched no known representation for
// its class. It is never swallowed: callers decide whether to retry the
// capture or fail the scenario.
type FormatError struct {
	Class  Class
	Raw    string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("normalize %s: %q: %s", e.Class, e.Raw, e.Reason)
}

type options struct {
	negative bool
}

// Hint carries caller-supplied metadata about how a surface rendered the
// value. Sign for losses is never inferred from text alone; surfaces that
// render losses via color or parenthesization must pass WithNegative.
type Hint func(*options)

// WithNegative declares that the surface marked this value as a loss
// (red text, parentheses, a CSS class). The normalized number is negated
// unless the raw text already carries an explicit sign.
func WithNegative() Hint {
	return func(o *options) { o.negative = true }
}

// Normalize parses one raw field value according to its class. An empty or
// whitespace-only raw value yields NotObserved with no error.
func Normalize(raw string, class Class, hints ...Hint) (Value, error) {
	var opts options
	for _, h := range hints {
		h(&opts)
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return NotObserved(), nil
	}
	switch class {
	case ClassText, ClassIdentifier:
		return Text(trimmed), nil
	case ClassDirection:
		return parseDirection(trimmed)
	case ClassOrderKind:
		return parseOrderKind(trimmed)
	case ClassPrice, ClassQuantity:
		return parseNumber(trimmed, class, false)
	case ClassMoney:
		return parseNumber(trimmed, class, opts.negative)
	case ClassDateTime:
		return parseDateTime(trimmed)
	case ClassExpiry:
		return parseExpiry(trimmed)
	default:
		return Value{}, &FormatError{Class: class, Raw: raw, Reason: "unsupported class"}
	}
}

func parseDirection(raw string) (Value, error) {
	switch strings.ToLower(raw) {
	case "buy", "long":
		return Text("buy"), nil
	case "sell", "short":
		return Text("sell"), nil
	}
	return Value{}, &FormatError{Class: ClassDirection, Raw: raw, Reason: "unknown direction"}
}

// parseOrderKind accepts MT-style combined labels ("Buy Limit") as well as
// plain kinds; the direction token is dropped here and carried by the
// direction field.
func parseOrderKind(raw string) (Value, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "buy ")
	s = strings.TrimPrefix(s, "sell ")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	switch strings.TrimSpace(s) {
	case "market":
		return Text("market"), nil
	case "limit":
		return Text("limit"), nil
	case "stop":
		return Text("stop"), nil
	case "stop limit":
		return Text("stop-limit"), nil
	}
	return Value{}, &FormatError{Class: ClassOrderKind, Raw: raw, Reason: "unknown order kind"}
}

var currencyRunes = map[rune]bool{
	'$': true, '€': true, '£': true, '¥': true, '₩': true, '₹': true,
}

// parseNumber strips currency symbols, unit suffixes and thousands
// separators, then parses with decimal arithmetic. Parentheses are treated
// as grouping noise only; they never imply sign (see WithNegative).
func parseNumber(raw string, class Class, negativeHint bool) (Value, error) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "()")
	// trailing unit or currency code, e.g. "1.5 lots", "12.30 USD"
	if idx := strings.IndexFunc(s, func(r rune) bool {
		return r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z'
	}); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case currencyRunes[r]:
		case r == ',' || r == ' ' || r == '\u00a0' || r == '\u202f':
			// thousands separators
		case r == '−': // U+2212 minus as rendered by some surfaces
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return Value{}, &FormatError{Class: class, Raw: raw, Reason: "no digits"}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Value{}, &FormatError{Class: class, Raw: raw, Reason: "not a decimal number"}
	}
	if negativeHint && d.Sign() > 0 {
		d = d.Neg()
	}
	return Number(d), nil
}
