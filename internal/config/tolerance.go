package config

import (
	"fmt"

	"tradecheck/internal/tolerance"

	"github.com/shopspring/decimal"
)

// ToleranceSet converts the configured default tolerances into engine
// values.
func (c *Config) ToleranceSet() (tolerance.Set, error) {
	return parseSet(c.Tolerance.Price, c.Tolerance.Quantity, c.Tolerance.Money)
}

// ToleranceProvider builds the provider the suite hands to scenarios:
// static config values, optionally fronted by Binance exchange filters.
func (c *Config) ToleranceProvider() (tolerance.Provider, error) {
	defaults, err := c.ToleranceSet()
	if err != nil {
		return nil, err
	}
	perSymbol := make(map[string]tolerance.Set, len(c.Tolerance.PerSymbol))
	for symbol, tc := range c.Tolerance.PerSymbol {
		set, err := parseSet(
			orDefault(tc.Price, c.Tolerance.Price),
			orDefault(tc.Quantity, c.Tolerance.Quantity),
			orDefault(tc.Money, c.Tolerance.Money),
		)
		if err != nil {
			return nil, fmt.Errorf("tolerance.per_symbol.%s: %w", symbol, err)
		}
		perSymbol[symbol] = set
	}
	static := tolerance.NewStatic(defaults, perSymbol)
	if c.Tolerance.Binance.Enabled {
		return tolerance.NewBinanceProvider(c.Tolerance.Binance.RESTBaseURL, static), nil
	}
	return static, nil
}

func parseSet(price, quantity, money string) (tolerance.Set, error) {
	var (
		set tolerance.Set
		err error
	)
	if set.Price, err = decimal.NewFromString(price); err != nil {
		return tolerance.Set{}, fmt.Errorf("tolerance.price %q is not a decimal", price)
	}
	if set.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return tolerance.Set{}, fmt.Errorf("tolerance.quantity %q is not a decimal", quantity)
	}
	if set.Money, err = decimal.NewFromString(money); err != nil {
		return tolerance.Set{}, fmt.Errorf("tolerance.money %q is not a decimal", money)
	}
	return set, nil
}

func orDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}
