package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/youte"
	"github.com/fwojciec/youte/collect"
)

// Run executes the quota command.
func (c *QuotaCmd) Run(deps *Dependencies) error {
	apiKey, err := resolveKey(deps, &c.KeyFlags)
	if err != nil {
		return err
	}

	rec, err := deps.Quota.GetQuota(deps.Ctx, collect.LedgerKey(apiKey))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}

	now := deps.Clock.Now()
	reset := youte.NextReset(now)
	fmt.Fprintf(deps.Stdout, "Used %d of %d units today (%d left).\n",
		rec.UnitsUsed, c.MaxQuota, max(c.MaxQuota-rec.UnitsUsed, 0))
	fmt.Fprintf(deps.Stdout, "Next reset: %s (in %s)\n",
		reset.In(youte.QuotaResetLocation).Format("2006-01-02 15:04 MST"),
		reset.Sub(now).Round(time.Minute))
	return nil
}
