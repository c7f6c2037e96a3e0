package reconcile

import (
	"fmt"
	"sort"

	"tradecheck/internal/normalize"
	"tradecheck/internal/order"
)

// Reconcile compares two observation sets under spec and returns a verdict.
// Pure: deterministic for identical inputs, no side effects beyond the
// result value.
func Reconcile(left, right order.ObservationSet, spec ComparisonSpec) (Result, error) {
	if spec.MatchByPosition {
		return reconcileByPosition(left, right, spec)
	}
	return reconcileByID(left, right, spec)
}

func reconcileByID(left, right order.ObservationSet, spec ComparisonSpec) (Result, error) {
	res := newResult(left, right)
	leftIdx, leftDupes := left.ByOrderID()
	rightIdx, rightDupes := right.ByOrderID()
	for _, id := range leftDupes {
		res.Warnings = append(res.Warnings, fmt.Sprintf("duplicate order_id %s in %s", id, left.Source()))
	}
	for _, id := range rightDupes {
		res.Warnings = append(res.Warnings, fmt.Sprintf("duplicate order_id %s in %s", id, right.Source()))
	}

	for id, lrec := range leftIdx {
		rrec, ok := rightIdx[id]
		if !ok {
			res.UnmatchedLeft = append(res.UnmatchedLeft, id)
			continue
		}
		res.MatchedOrderIDs = append(res.MatchedOrderIDs, id)
		res.Mismatches = append(res.Mismatches, comparePair(id, lrec, rrec, spec)...)
	}
	for id := range rightIdx {
		if _, ok := leftIdx[id]; !ok {
			res.UnmatchedRight = append(res.UnmatchedRight, id)
		}
	}
	finalize(&res)
	return res, nil
}

func reconcileByPosition(left, right order.ObservationSet, spec ComparisonSpec) (Result, error) {
	if left.Len() != right.Len() {
		return Result{}, fmt.Errorf("positional match requires equal set sizes: %s has %d, %s has %d",
			left.Source(), left.Len(), right.Source(), right.Len())
	}
	res := newResult(left, right)
	for i := 0; i < left.Len(); i++ {
		lrec, rrec := left.At(i), right.At(i)
		id := pairLabel(i, lrec, rrec)
		res.MatchedOrderIDs = append(res.MatchedOrderIDs, id)
		res.Mismatches = append(res.Mismatches, comparePair(id, lrec, rrec, spec)...)
	}
	finalize(&res)
	return res, nil
}

// pairLabel names a positionally-paired row for diagnostics. The left id
// wins when the sides disagree (the right side typically has no real id
// yet in positional mode).
func pairLabel(idx int, lrec, rrec order.Record) string {
	if id := lrec.OrderID(); id != "" {
		return id
	}
	if id := rrec.OrderID(); id != "" {
		return id
	}
	return fmt.Sprintf("row#%d", idx)
}

func comparePair(id string, lrec, rrec order.Record, spec ComparisonSpec) []MismatchDetail {
	fields := spec.Fields
	if fields == nil {
		fields = unionFields(lrec, rrec)
	}
	var out []MismatchDetail
	for _, f := range fields {
		// the join key matches by construction in id mode and is
		// meaningless before assignment in positional mode
		if f == order.FieldOrderID && spec.Fields == nil {
			continue
		}
		if d := compareField(id, f, lrec.Value(f), rrec.Value(f), spec); d != nil {
			out = append(out, *d)
		}
	}
	return out
}

func unionFields(lrec, rrec order.Record) []order.Field {
	seen := make(map[order.Field]bool)
	for _, f := range lrec.ObservedFields() {
		seen[f] = true
	}
	for _, f := range rrec.ObservedFields() {
		seen[f] = true
	}
	out := make([]order.Field, 0, len(seen))
	for _, f := range order.AllFields() {
		if seen[f] {
			out = append(out, f)
		}
	}
	return out
}

func compareField(id string, f order.Field, lv, rv normalize.Value, spec ComparisonSpec) *MismatchDetail {
	switch {
	case !lv.Observed() && !rv.Observed():
		return nil
	case !lv.Observed():
		if !spec.Required[f] {
			return nil
		}
		return detail(id, f, lv, rv, MismatchMissingLeft)
	case !rv.Observed():
		if !spec.Required[f] {
			return nil
		}
		return detail(id, f, lv, rv, MismatchMissingRight)
	}
	if lv.Kind() == normalize.KindInvalid || rv.Kind() == normalize.KindInvalid {
		return detail(id, f, lv, rv, MismatchUnparsable)
	}
	if f.Class().Numeric() {
		ld, lok := lv.Decimal()
		rd, rok := rv.Decimal()
		if lok && rok {
			tol := spec.Tolerances.For(f.Class())
			if ld.Sub(rd).Abs().Cmp(tol) <= 0 {
				return nil
			}
			return detail(id, f, lv, rv, MismatchValue)
		}
		// one side numeric, the other not: fall through to exact compare,
		// which fails and reports the rendered values
	}
	if lv.Equal(rv) {
		return nil
	}
	return detail(id, f, lv, rv, MismatchValue)
}

func detail(id string, f order.Field, lv, rv normalize.Value, kind MismatchKind) *MismatchDetail {
	return &MismatchDetail{
		OrderID:   id,
		Field:     f,
		FieldName: f.String(),
		Expected:  lv.String(),
		Actual:    rv.String(),
		Kind:      kind,
	}
}

func newResult(left, right order.ObservationSet) Result {
	return Result{LeftSource: left.Source(), RightSource: right.Source()}
}

// finalize orders every slice so identical inputs render identical output.
func finalize(res *Result) {
	sort.Slice(res.Mismatches, func(i, j int) bool {
		a, b := res.Mismatches[i], res.Mismatches[j]
		if a.OrderID != b.OrderID {
			return a.OrderID < b.OrderID
		}
		return a.Field < b.Field
	})
	sort.Strings(res.MatchedOrderIDs)
	sort.Strings(res.UnmatchedLeft)
	sort.Strings(res.UnmatchedRight)
	sort.Strings(res.Warnings)
	res.Passed = len(res.Mismatches) == 0
}
