// Package order holds the canonical, surface-agnostic representation of one
// trading order as observed on one UI surface, and the assembly step that
// turns raw field maps into typed records.
package order

import "tradecheck/internal/normalize"

// Field is the closed vocabulary of canonical order attributes. Page objects
// map their UI-specific labels ("TP", "Take Profit") onto these before
// assembly; an unknown label is a configuration error, not a runtime nil.
type Field int

const (
	FieldOrderID Field = iota
	FieldSymbol
	FieldDirection
	FieldOrderKind
	FieldVolume
	FieldUnits
	FieldEntryPrice
	FieldStopLoss
	FieldTakeProfit
	FieldExpiry
	FieldOpenedAt
	FieldClosedAt
	FieldProfitLoss
	FieldCurrency
)

var fieldNames = map[Field]string{
	FieldOrderID:    "order_id",
	FieldSymbol:     "symbol",
	FieldDirection:  "direction",
	FieldOrderKind:  "order_kind",
	FieldVolume:     "volume",
	FieldUnits:      "units",
	FieldEntryPrice: "entry_price",
	FieldStopLoss:   "stop_loss",
	FieldTakeProfit: "take_profit",
	FieldExpiry:     "expiry",
	FieldOpenedAt:   "opened_at",
	FieldClosedAt:   "closed_at",
	FieldProfitLoss: "profit_loss",
	FieldCurrency:   "currency",
}

var fieldClasses = map[Field]normalize.Class{
	FieldOrderID:    normalize.ClassIdentifier,
	FieldSymbol:     normalize.ClassText,
	FieldDirection:  normalize.ClassDirection,
	FieldOrderKind:  normalize.ClassOrderKind,
	FieldVolume:     normalize.ClassQuantity,
	FieldUnits:      normalize.ClassQuantity,
	FieldEntryPrice: normalize.ClassPrice,
	FieldStopLoss:   normalize.ClassPrice,
	FieldTakeProfit: normalize.ClassPrice,
	FieldExpiry:     normalize.ClassExpiry,
	FieldOpenedAt:   normalize.ClassDateTime,
	FieldClosedAt:   normalize.ClassDateTime,
	FieldProfitLoss: normalize.ClassMoney,
	FieldCurrency:   normalize.ClassText,
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// Class returns how values of this field parse and compare.
func (f Field) Class() normalize.Class {
	if c, ok := fieldClasses[f]; ok {
		return c
	}
	return normalize.ClassText
}

// FieldByName resolves a canonical field name, for mapping tables loaded
// from config files.
func FieldByName(name string) (Field, bool) {
	for f, n := range fieldNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// AllFields lists every canonical field in declaration order.
func AllFields() []Field {
	out := make([]Field, 0, len(fieldNames))
	for f := FieldOrderID; f <= FieldCurrency; f++ {
		out = append(out, f)
	}
	return out
}
