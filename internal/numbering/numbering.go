// Package numbering allocates human-readable document numbers (QT-001,
// INV-001) from an atomic per-sequence counter.
package numbering

import (
	"context"
	"fmt"

	"agency_crm_backend/platform/metrics"
)

// Sequence is the prefix of a numbering series.
type Sequence string

const (
	SequenceQuote   Sequence = "QT"
	SequenceInvoice Sequence = "INV"
)

// Store is an atomic increment-and-get counter keyed by sequence.
// Two calls for the same key must never return the same value.
type Store interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
}

const defaultWidth = 3

// Format renders a counter value, e.g. Format(SequenceQuote, 7) == "QT-007".
// Values wider than three digits are printed in full.
func Format(seq Sequence, n int64) string {
	return fmt.Sprintf("%s-%0*d", seq, defaultWidth, n)
}

// Allocator hands out formatted numbers.
//
// With a dedicated store (e.g. Redis) every number comes from it. Without one
// the caller's transaction-scoped store is used so the increment commits or
// rolls back together with the document it numbers.
type Allocator struct {
	dedicated Store
}

// NewAllocator returns an Allocator. dedicated may be nil.
func NewAllocator(dedicated Store) *Allocator {
	return &Allocator{dedicated: dedicated}
}

// Next allocates the next number of seq.
func (a *Allocator) Next(ctx context.Context, scoped Store, seq Sequence) (string, error) {
	store := scoped
	if a != nil && a.dedicated != nil {
		store = a.dedicated
	}
	if store == nil {
		return "", fmt.Errorf("next %s number: no counter store", seq)
	}

	n, err := store.IncrementAndGet(ctx, string(seq))
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", seq, err)
	}
	metrics.NumbersAllocated.WithLabelValues(string(seq)).Inc()
	return Format(seq, n), nil
}
