// Package reconcile decides whether independent observations of the same
// trading orders, captured from different surfaces, are mutually consistent
// under platform tick/lot tolerances.
package reconcile

import (
	"tradecheck/internal/order"
	"tradecheck/internal/tolerance"
)

// ComparisonSpec configures one reconciliation call.
type ComparisonSpec struct {
	// Fields restricts the comparison. Nil means the union of fields
	// observed on either side of each matched pair.
	Fields []order.Field

	// Required lists fields whose absence on one side is a mismatch.
	// Fields outside this set may legitimately be omitted by a surface
	// (many don't render take-profit, for example) and are skipped when
	// only one side shows them.
	Required map[order.Field]bool

	// Tolerances supplies the numeric slack per value class. Zero values
	// demand exact equality.
	Tolerances tolerance.Set

	// MatchByPosition pairs records by row index instead of order_id.
	// Only valid when both sets have equal length; used for surfaces that
	// show a just-submitted order before an id is assigned.
	MatchByPosition bool
}

// RequireFields is a convenience constructor for the Required set.
func RequireFields(fields ...order.Field) map[order.Field]bool {
	out := make(map[order.Field]bool, len(fields))
	for _, f := range fields {
		out[f] = true
	}
	return out
}
