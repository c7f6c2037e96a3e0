package reconcile

import (
	"fmt"

	"tradecheck/internal/order"
)

// MismatchKind classifies one discrepancy.
type MismatchKind string

const (
	MismatchValue        MismatchKind = "value-mismatch"
	MismatchMissingLeft  MismatchKind = "missing-in-left"
	MismatchMissingRight MismatchKind = "missing-in-right"
	MismatchUnparsable   MismatchKind = "unparsable"
)

// MismatchDetail is one field-level discrepancy between two observations of
// the same order. Expected comes from the left (reference) set.
type MismatchDetail struct {
	OrderID   string       `json:"order_id"`
	Field     order.Field  `json:"-"`
	FieldName string       `json:"field"`
	Expected  string       `json:"expected"`
	Actual    string       `json:"actual"`
	Kind      MismatchKind `json:"kind"`
}

func (d MismatchDetail) String() string {
	return fmt.Sprintf("order=%s field=%s expected=%s actual=%s kind=%s",
		d.OrderID, d.FieldName, d.Expected, d.Actual, d.Kind)
}

// Result is the verdict of one reconciliation call. Produced fresh per call
// and never mutated afterwards. Unmatched ids are surfaced separately and do
// not affect Passed: whether extra rows are acceptable is the scenario's
// call, not the engine's.
type Result struct {
	Passed          bool             `json:"passed"`
	Mismatches      []MismatchDetail `json:"mismatches,omitempty"`
	MatchedOrderIDs []string         `json:"matched_order_ids,omitempty"`
	UnmatchedLeft   []string         `json:"unmatched_left,omitempty"`
	UnmatchedRight  []string         `json:"unmatched_right,omitempty"`
	LeftSource      string           `json:"left_source"`
	RightSource     string           `json:"right_source"`
	Warnings        []string         `json:"warnings,omitempty"`
}
