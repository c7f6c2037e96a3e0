package reconcile

import (
	"sort"

	"tradecheck/internal/order"

	"github.com/shopspring/decimal"
)

// GroupTotals sums observed profit/loss per symbol. Records without an
// observed symbol group under "(unknown)"; records without an observed
// profit/loss contribute nothing. Used by bulk scenarios that verify
// aggregates instead of per-row equality.
func GroupTotals(set order.ObservationSet) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, rec := range set.Records() {
		pl, ok := rec.Value(order.FieldProfitLoss).Decimal()
		if !ok {
			continue
		}
		symbol := "(unknown)"
		if v := rec.Value(order.FieldSymbol); v.Observed() {
			symbol = v.String()
		}
		totals[symbol] = totals[symbol].Add(pl)
	}
	return totals
}

// CompareTotals reconciles per-symbol profit/loss aggregates of two sets
// under the money tolerance. Mismatch details carry the symbol in place of
// an order id. Symbols present on only one side go to the unmatched sets
// and, as with per-row reconciliation, do not fail the verdict by
// themselves.
func CompareTotals(left, right order.ObservationSet, tol decimal.Decimal) Result {
	res := newResult(left, right)
	lt := GroupTotals(left)
	rt := GroupTotals(right)
	for symbol, lsum := range lt {
		rsum, ok := rt[symbol]
		if !ok {
			res.UnmatchedLeft = append(res.UnmatchedLeft, symbol)
			continue
		}
		res.MatchedOrderIDs = append(res.MatchedOrderIDs, symbol)
		if lsum.Sub(rsum).Abs().Cmp(tol) > 0 {
			res.Mismatches = append(res.Mismatches, MismatchDetail{
				OrderID:   symbol,
				Field:     order.FieldProfitLoss,
				FieldName: order.FieldProfitLoss.String(),
				Expected:  lsum.String(),
				Actual:    rsum.String(),
				Kind:      MismatchValue,
			})
		}
	}
	for symbol := range rt {
		if _, ok := lt[symbol]; !ok {
			res.UnmatchedRight = append(res.UnmatchedRight, symbol)
		}
	}
	finalize(&res)
	return res
}

// SortedSymbols returns the symbols of a totals map in lexical order, for
// deterministic rendering.
func SortedSymbols(totals map[string]decimal.Decimal) []string {
	out := make([]string, 0, len(totals))
	for s := range totals {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
