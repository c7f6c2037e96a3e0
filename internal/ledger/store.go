// Package ledger provides a durable, append-only record of order ids
// produced by bulk operations, readable across process and session
// boundaries. A later run reads the ledger back to verify that orders
// created earlier eventually surface elsewhere (pending → history after
// expiry).
package ledger

import "fmt"

// Store is the ledger contract. Duplicate ids are preserved; de-duplication
// is scenario policy, not store policy. Clear is idempotent and must
// succeed for labels that never existed.
//
// Two runs sharing a label concurrently is a correctness hazard (lost or
// interleaved appends). The recommended construction is one label per run
// instance; see scenario.RunLabel.
type Store interface {
	Clear(label string) error
	Append(label, orderID string) error
	Read(label string) ([]string, error)
}

// IOError wraps a backing-store failure (permissions, disk, database).
// Never retried internally; it propagates so the attempt orchestrator can
// decide.
type IOError struct {
	Op    string
	Label string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("ledger %s %q: %v", e.Op, e.Label, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }
