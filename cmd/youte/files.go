package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/youte"
	"github.com/fwojciec/youte/csv"
	"github.com/fwojciec/youte/fs"
)

// Run executes the dehydrate command.
func (c *DehydrateCmd) Run(deps *Dependencies) error {
	in, err := os.Open(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	defer in.Close()

	if c.Output == "" {
		n, err := fs.Dehydrate(in, deps.Stdout)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "Extracted %d ids\n", n)
		return nil
	}

	out, err := fs.CreateAtomic(c.Output)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	n, err := fs.Dehydrate(in, out)
	if err != nil {
		_ = out.Abort()
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}
	if err := out.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d ids to %s\n", n, c.Output)
	return nil
}

// Run executes the tidy command.
func (c *TidyCmd) Run(deps *Dependencies) error {
	in, err := os.Open(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	defer in.Close()

	w, err := csv.OpenWriter(c.Output, deps.Converter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	n, err := tidy(deps, in, w)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d rows to %s\n", n, c.Output)
	return nil
}

func tidy(deps *Dependencies, r io.Reader, w *csv.Writer) (int, error) {
	n, err := csv.Tidy(deps.Ctx, r, w)
	if cerr := w.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return n, err
}
