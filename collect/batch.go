package collect

import (
	"strings"

	"github.com/fwojciec/youte"
)

// Batches splits ids into consecutive chunks of at most size ids, keeping
// input order.
func Batches(ids []string, size int) [][]string {
	if size <= 0 {
		size = youte.MaxBatchIDs
	}
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

// Scopes returns the owner keys of a run in processing order.
// Plain runs have a single empty scope, per-item runs one scope per id and
// batched runs one scope per comma-joined batch.
func Scopes(mode youte.Mode, ids []string) []string {
	switch mode {
	case youte.ModePerItem:
		return append([]string(nil), ids...)
	case youte.ModeBatchedIDs:
		batches := Batches(ids, youte.MaxBatchIDs)
		scopes := make([]string, 0, len(batches))
		for _, b := range batches {
			scopes = append(scopes, strings.Join(b, ","))
		}
		return scopes
	default:
		return []string{""}
	}
}
