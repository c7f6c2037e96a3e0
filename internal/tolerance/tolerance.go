// Package tolerance resolves the numeric slack allowed when comparing the
// same order across surfaces: price fields tolerate one platform tick,
// volume/unit fields one lot step.
package tolerance

import (
	"context"
	"strings"

	"tradecheck/internal/normalize"

	"github.com/shopspring/decimal"
)

// Set holds per-class comparison tolerances. Zero means exact match.
type Set struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Money    decimal.Decimal
}

// For returns the tolerance for a value class. Non-numeric classes always
// compare exactly.
func (s Set) For(class normalize.Class) decimal.Decimal {
	switch class {
	case normalize.ClassPrice:
		return s.Price
	case normalize.ClassQuantity:
		return s.Quantity
	case normalize.ClassMoney:
		return s.Money
	default:
		return decimal.Zero
	}
}

// Provider resolves the tolerance set for a symbol. Implementations may hit
// the network; callers pass a context.
type Provider interface {
	ForSymbol(ctx context.Context, symbol string) (Set, error)
}

// Static serves tolerances from configuration, with optional per-symbol
// overrides.
type Static struct {
	defaults  Set
	perSymbol map[string]Set
}

func NewStatic(defaults Set, perSymbol map[string]Set) *Static {
	normalized := make(map[string]Set, len(perSymbol))
	for sym, set := range perSymbol {
		normalized[canonSymbol(sym)] = set
	}
	return &Static{defaults: defaults, perSymbol: normalized}
}

func (s *Static) ForSymbol(_ context.Context, symbol string) (Set, error) {
	if s == nil {
		return Set{}, nil
	}
	if set, ok := s.perSymbol[canonSymbol(symbol)]; ok {
		return set, nil
	}
	return s.defaults, nil
}

func canonSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return strings.NewReplacer("/", "", "-", "", "_", "").Replace(symbol)
}
