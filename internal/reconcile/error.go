package reconcile

import (
	"fmt"
	"strings"
)

// VerificationError is raised by a scenario when a reconciliation verdict
// fails. It carries the full structured result; the rendered table is for
// humans reading the run log.
type VerificationError struct {
	Result Result
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed: %s vs %s: %d mismatch(es)",
		e.Result.LeftSource, e.Result.RightSource, len(e.Result.Mismatches))
}

// Verify returns nil for a passing result and a *VerificationError
// otherwise. Unmatched ids never fail here; scenarios that care assert on
// them explicitly.
func Verify(res Result) error {
	if res.Passed {
		return nil
	}
	return &VerificationError{Result: res}
}

// Table renders the mismatch list as an aligned text table.
func (e *VerificationError) Table() string {
	return RenderMismatchTable(e.Result)
}

// RenderMismatchTable renders a verdict for the run log.
func RenderMismatchTable(res Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== Reconciliation: %s vs %s ===\n", res.LeftSource, res.RightSource))
	if len(res.Mismatches) == 0 {
		sb.WriteString("(no mismatches)")
	} else {
		rows := make([][4]string, 0, len(res.Mismatches)+1)
		rows = append(rows, [4]string{"ORDER", "FIELD", "EXPECTED", "ACTUAL"})
		for _, d := range res.Mismatches {
			expected := d.Expected
			actual := d.Actual
			if d.Kind != MismatchValue {
				actual = actual + " [" + string(d.Kind) + "]"
			}
			rows = append(rows, [4]string{d.OrderID, d.FieldName, expected, actual})
		}
		writeAligned(&sb, rows)
	}
	if len(res.UnmatchedLeft) > 0 {
		sb.WriteString(fmt.Sprintf("\nonly in %s: %s", res.LeftSource, strings.Join(res.UnmatchedLeft, ", ")))
	}
	if len(res.UnmatchedRight) > 0 {
		sb.WriteString(fmt.Sprintf("\nonly in %s: %s", res.RightSource, strings.Join(res.UnmatchedRight, ", ")))
	}
	for _, w := range res.Warnings {
		sb.WriteString("\nwarning: " + w)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeAligned(sb *strings.Builder, rows [][4]string) {
	var widths [4]int
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			sb.WriteString(cell)
			if i < 3 {
				sb.WriteString(strings.Repeat(" ", widths[i]-len(cell)+2))
			}
		}
		sb.WriteString("\n")
	}
}
