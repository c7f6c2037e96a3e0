// Package normalize converts raw field values captured from UI surfaces into
// canonical typed values. Parsing is strict: a value that matches no known
// representation yields a *FormatError, never a silent zero.
package normalize

// Class describes how a raw field value is parsed and later compared.
type Class int

const (
	ClassText Class = iota
	ClassIdentifier
	ClassDirection
	ClassOrderKind
	ClassPrice
	ClassQuantity
	ClassMoney
	ClassDateTime
	ClassExpiry
)

func (c Class) String() string {
	switch c {
	case ClassText:
		return "text"
	case ClassIdentifier:
		return "identifier"
	case ClassDirection:
		return "direction"
	case ClassOrderKind:
		return "order_kind"
	case ClassPrice:
		return "price"
	case ClassQuantity:
		return "quantity"
	case ClassMoney:
		return "money"
	case ClassDateTime:
		return "datetime"
	case ClassExpiry:
		return "expiry"
	default:
		return "unknown"
	}
}

// Numeric reports whether values of this class compare under a tolerance
// instead of exact equality.
func (c Class) Numeric() bool {
	switch c {
	case ClassPrice, ClassQuantity, ClassMoney:
		return true
	default:
		return false
	}
}
