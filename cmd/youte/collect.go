package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/youte"
	"github.com/fwojciec/youte/collect"
	"github.com/fwojciec/youte/csv"
	"github.com/fwojciec/youte/fs"
	"github.com/fwojciec/youte/sqlite"
)

// resolveKey returns the API key selected by flags: an explicit key, then
// a named profile, then the default profile.
func resolveKey(deps *Dependencies, f *KeyFlags) (string, error) {
	if f.Key != "" {
		return f.Key, nil
	}

	p, err := deps.Profiles.FindProfile(deps.Ctx, f.Name)
	switch {
	case youte.ErrorCode(err) == youte.ENOTFOUND && f.Name != "":
		fmt.Fprintf(deps.Stderr, "error: no API key named %q. Use 'youte config list' to see stored keys.\n", f.Name)
		return "", youte.Errorf(youte.ECONFIG, "no API key named %q", f.Name)
	case youte.ErrorCode(err) == youte.ENOTFOUND:
		fmt.Fprintln(deps.Stderr, "error: no API key. Pass --key, set YOUTE_API_KEY or run 'youte config add-key NAME KEY'.")
		return "", youte.Errorf(youte.ECONFIG, "no API key configured")
	case err != nil:
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return "", err
	}
	return p.Key, nil
}

// pageWriters fans pages out to every requested output.
type pageWriters []youte.PageWriter

func (ws pageWriters) WritePage(ctx context.Context, page *youte.ResponsePage) error {
	for _, w := range ws {
		if err := w.WritePage(ctx, page); err != nil {
			return err
		}
	}
	return nil
}

func (ws pageWriters) Close() error {
	var errs []error
	for _, w := range ws {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}

// openWriters opens the outputs selected by flags. Raw responses go to
// stdout unless a file, a CSV table or an archive is requested.
func (f *CollectFlags) openWriters(deps *Dependencies) (pageWriters, error) {
	var ws pageWriters
	switch {
	case f.Output != "":
		w, err := fs.OpenJSONLWriter(f.Output)
		if err != nil {
			return nil, err
		}
		ws = append(ws, w)
	case f.ToCSV == "" && f.ToDB == "":
		ws = append(ws, fs.NewJSONLWriter(deps.Stdout))
	}
	if f.ToCSV != "" {
		w, err := csv.OpenWriter(f.ToCSV, deps.Converter)
		if err != nil {
			_ = ws.Close()
			return nil, err
		}
		ws = append(ws, w)
	}
	if f.ToDB != "" {
		a, err := sqlite.OpenArchive(f.ToDB, csv.NewFlattener(deps.Converter))
		if err != nil {
			_ = ws.Close()
			return nil, err
		}
		ws = append(ws, a)
	}
	return ws, nil
}

// outputArgs renders the output flags for a resume command line.
func (f *CollectFlags) outputArgs() string {
	var b strings.Builder
	for _, o := range []struct{ flag, path string }{
		{"-o", f.Output}, {"--to-csv", f.ToCSV}, {"--to-db", f.ToDB},
	} {
		if o.path == "" {
			continue
		}
		path := o.path
		if strings.ContainsAny(path, " \t'\"") {
			path = strconv.Quote(path)
		}
		fmt.Fprintf(&b, " %s %s", o.flag, path)
	}
	return b.String()
}

// runStats tracks a run through engine progress events.
type runStats struct {
	run     string
	pages   int
	items   int
	skipped int
	units   int
}

func (s *runStats) progress(w io.Writer) collect.ProgressFunc {
	return func(ev collect.ProgressEvent) {
		switch ev.Type {
		case collect.ProgressState:
			switch ev.State {
			case collect.StateSeeding:
				s.run = ev.Run
			case collect.StateFetching:
				if ev.ScopeTotal > 1 {
					fmt.Fprintf(w, "[%d/%d] %s\n", ev.ScopeIndex+1, ev.ScopeTotal, abbreviate(ev.Scope))
				}
			}
		case collect.ProgressPage:
			s.units = ev.UnitsUsed
		case collect.ProgressSkipped:
			s.skipped++
			fmt.Fprintf(w, "skipped %s: %s\n", abbreviate(ev.Scope), youte.ErrorMessage(ev.Error))
		case collect.ProgressRetry:
			fmt.Fprintf(w, "retrying (attempt %d): %s\n", ev.Attempt, youte.ErrorMessage(ev.Error))
		case collect.ProgressQuotaWait:
			fmt.Fprintf(w, "quota exhausted; waiting %s for the daily reset\n", ev.Wait.Round(time.Second))
		}
	}
}

// abbreviate shortens the comma-joined ids of a batch for display.
func abbreviate(scope string) string {
	ids := strings.Split(scope, ",")
	if len(ids) <= 2 {
		return scope
	}
	return fmt.Sprintf("%s ... %s (%d ids)", ids[0], ids[len(ids)-1], len(ids))
}

// collectRun drives one run to completion and writes every page.
func collectRun(deps *Dependencies, f *CollectFlags, run collect.Run) error {
	_, err := runCollection(deps, f, run)
	return err
}

// runCollection is collectRun returning the identifier of the run, which
// is empty if the run never started.
func runCollection(deps *Dependencies, f *CollectFlags, run collect.Run) (string, error) {
	apiKey, err := resolveKey(deps, &f.KeyFlags)
	if err != nil {
		return "", err
	}

	writers, err := f.openWriters(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
		return "", err
	}

	stats := &runStats{}
	engine := &collect.Engine{
		Executor:    deps.NewExecutor(apiKey),
		Quota:       deps.Quota,
		Stores:      deps.Stores,
		Clock:       deps.Clock,
		ProviderKey: collect.LedgerKey(apiKey),
		MaxQuota:    f.MaxQuota,
		BaseURL:     deps.BaseURL,
		RetryDelays: deps.RetryDelays,
		Jitter:      deps.Jitter,
		Progress:    stats.progress(deps.Stderr),
	}
	if f.RPS > 0 {
		engine.Limiter = collect.NewPacer(f.RPS)
	}

	// Pages already fetched are written even if the run is being interrupted.
	wctx := context.WithoutCancel(deps.Ctx)

	var runErr error
	for page, err := range engine.Collect(deps.Ctx, run) {
		if err != nil {
			runErr = err
			break
		}
		if err := writers.WritePage(wctx, page); err != nil {
			runErr = fmt.Errorf("write page: %w", err)
			break
		}
		stats.pages++
		stats.items += len(page.Items())
	}
	if err := writers.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close output: %w", err)
	}

	switch {
	case runErr == nil:
		fmt.Fprintf(deps.Stderr, "Collected %d pages (%d items) in run %s.", stats.pages, stats.items, stats.run)
		if stats.skipped > 0 {
			fmt.Fprintf(deps.Stderr, " Skipped %d.", stats.skipped)
		}
		if stats.pages > 0 {
			fmt.Fprintf(deps.Stderr, " Quota used today: %d units.", stats.units)
		}
		fmt.Fprintln(deps.Stderr)
		return stats.run, nil
	case youte.IsInterrupted(runErr):
		return stats.run, interruptPrompt(deps, f, stats, runErr)
	case stats.run == "":
		fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(runErr))
		return "", runErr
	}

	fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(runErr))
	switch youte.ErrorCode(runErr) {
	case youte.ECONFLICT:
		fmt.Fprintf(deps.Stderr, "Hint: Use 'youte resume %s' to continue it, or --run NAME to start a separate run\n", stats.run)
	case youte.ENOTFOUND, youte.EINVALID:
	default:
		fmt.Fprintf(deps.Stderr, "Progress of run %s was kept. Resume with: youte resume %s%s\n", stats.run, stats.run, f.outputArgs())
	}
	return stats.run, runErr
}

// interruptPrompt asks whether an interrupted run's progress should be
// kept for a later resume.
func interruptPrompt(deps *Dependencies, f *CollectFlags, stats *runStats, runErr error) error {
	fmt.Fprintf(deps.Stderr, "\nRun %s interrupted after %d pages. Keep progress to resume later? [Y/n] ", stats.run, stats.pages)

	answer, _ := bufio.NewReader(deps.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "n" || answer == "no" {
		err := deps.Stores.RemoveRun(context.WithoutCancel(deps.Ctx), stats.run)
		if err != nil && youte.ErrorCode(err) != youte.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: %s\n", youte.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "Progress of run %s discarded.\n", stats.run)
		return runErr
	}

	fmt.Fprintf(deps.Stderr, "Resume with: youte resume %s%s\n", stats.run, f.outputArgs())
	return runErr
}
