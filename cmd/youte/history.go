package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/youte"
)

// Run executes the history list command.
func (c *HistoryListCmd) Run(deps *Dependencies) error {
	runs, err := deps.Stores.FindRuns(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs with stored progress.")
		return nil
	}

	for _, id := range runs {
		line, err := describeRun(deps, id)
		if err != nil {
			fmt.Fprintf(deps.Stdout, "%s  (unreadable: %s)\n", id, youte.ErrorMessage(err))
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s  %s\n", id, line)
	}
	return nil
}

// describeRun summarizes the parameters and cursors of a stored run.
func describeRun(deps *Dependencies, id string) (string, error) {
	store, err := deps.Stores.OpenProgressStore(deps.Ctx, id)
	if err != nil {
		return "", err
	}
	defer store.Close()

	params, err := store.LoadMeta(deps.Ctx)
	if err != nil {
		return "", err
	}
	cursors, err := store.Cursors(deps.Ctx)
	if err != nil {
		return "", err
	}

	var retrieved, pending int
	for _, c := range cursors {
		if c.Retrieved() {
			retrieved++
		} else {
			pending++
		}
	}
	return fmt.Sprintf("%s  %d retrieved, %d pending", describeParams(params), retrieved, pending), nil
}

func describeParams(p youte.RunParams) string {
	parts := []string{p.Endpoint}
	if q := p.Params["q"]; q != "" {
		parts = append(parts, fmt.Sprintf("%q", q))
	}
	switch len(p.IDs) {
	case 0:
	case 1:
		parts = append(parts, p.IDs[0])
	default:
		parts = append(parts, fmt.Sprintf("%d ids", len(p.IDs)))
	}
	return strings.Join(parts, " ")
}

// Run executes the history remove command.
func (c *HistoryRemoveCmd) Run(deps *Dependencies) error {
	if err := deps.Stores.RemoveRun(deps.Ctx, c.ID); err != nil {
		if youte.ErrorCode(err) == youte.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: run %q not found. Use 'youte history list' to see stored runs.\n", c.ID)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Removed run %s\n", c.ID)
	return nil
}
