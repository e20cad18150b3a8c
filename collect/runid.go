package collect

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/youte"
)

// RunID derives the default run identifier from the run parameters, so
// repeating an identical command resumes the same run.
func RunID(params youte.RunParams) string {
	return fmt.Sprintf("%s-%016x", params.Endpoint, xxhash.Sum64(params.Canonical()))
}

// LedgerKey derives the quota ledger entry of an API key so the key itself
// is never written to the ledger.
func LedgerKey(apiKey string) string {
	return fmt.Sprintf("key-%016x", xxhash.Sum64String(apiKey))
}
