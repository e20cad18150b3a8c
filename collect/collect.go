// Package collect provides the collection engine. It pages through provider
// endpoints, records every cursor in a run's progress store so an interrupted
// run can resume, and gates every call on the shared quota ledger.
package collect

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"time"

	"github.com/fwojciec/youte"
	"github.com/google/uuid"
)

// Engine orchestrates collection runs.
// Runs are strictly sequential: one request is in flight at a time.
type Engine struct {
	Executor youte.RequestExecutor
	Quota    youte.QuotaLedger
	Stores   youte.ProgressStoreService

	// Limiter paces requests. Optional.
	Limiter youte.Pacer

	// Clock defaults to the system clock.
	Clock youte.Clock

	// ProviderKey identifies the quota ledger entry billed by this engine.
	ProviderKey string

	// MaxQuota is the daily ceiling. Defaults to youte.DefaultMaxQuota.
	MaxQuota int

	// BaseURL overrides youte.DefaultBaseURL.
	BaseURL string

	// RetryDelays are the waits between transient failures.
	// Defaults to DefaultRetryDelays.
	RetryDelays []time.Duration

	// Jitter is the randomized fraction of each retry delay. Zero disables it.
	Jitter float64

	// Session identifies this process invocation in page metadata.
	// Generated when empty.
	Session string

	// Progress receives engine events. Optional.
	Progress ProgressFunc
}

// Run identifies one collection.
type Run struct {
	// ID names the run's progress store. Derived from Params when empty.
	ID string

	// Params of the run. When Params.Endpoint is empty the stored
	// parameters of run ID are used.
	Params youte.RunParams
}

// State is a phase of a run.
type State int

// Run states.
const (
	StateSeeding State = iota
	StateFetching
	StateAdvancing
	StateDrained
	StateDone
	StateInterrupted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateSeeding:
		return "seeding"
	case StateFetching:
		return "fetching"
	case StateAdvancing:
		return "advancing"
	case StateDrained:
		return "drained"
	case StateDone:
		return "done"
	case StateInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type  ProgressType
	State State
	Run   string

	// Scope is the owner key being processed and ScopeIndex its position
	// among ScopeTotal scopes.
	Scope      string
	ScopeIndex int
	ScopeTotal int

	Token string

	// UnitsUsed is the ledger total after a billed call.
	UnitsUsed int

	// Wait is the sleep ahead on quota waits and retries.
	Wait time.Duration

	// Attempt is the upcoming attempt number on retries.
	Attempt int

	Error error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressState ProgressType = iota
	ProgressPage
	ProgressSkipped
	ProgressRetry
	ProgressQuotaWait
)

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

// errStopped signals that the consumer stopped iterating.
var errStopped = errors.New("consumer stopped")

// Collect returns the pages of a run as a lazy sequence. Each iteration
// performs at most one cursor fetch. A failure is yielded once as the last
// element; cancellation of ctx yields an EINTERRUPTED error and leaves the
// run's progress on disk. Once every scope is drained the progress store is
// destroyed. Breaking out of the loop stops the run without touching its
// progress.
func (e *Engine) Collect(ctx context.Context, run Run) iter.Seq2[*youte.ResponsePage, error] {
	return func(yield func(*youte.ResponsePage, error) bool) {
		err := e.collect(ctx, run, yield)
		if err != nil && !errors.Is(err, errStopped) {
			yield(nil, err)
		}
	}
}

// runState carries what one run needs while fetching.
type runState struct {
	id      string
	session string
	params  youte.RunParams
	spec    *youte.RequestSpec
	store   youte.ProgressStore
	scopes  []string
	scope   int
}

func (e *Engine) collect(ctx context.Context, run Run, yield func(*youte.ResponsePage, error) bool) error {
	if e.ProviderKey == "" {
		return youte.Errorf(youte.EINVALID, "provider key required")
	}

	runID := run.ID
	if run.Params.Endpoint != "" {
		run.Params.Normalize()
		if err := run.Params.Validate(); err != nil {
			return err
		}
		if runID == "" {
			runID = RunID(run.Params)
		}
	} else if runID == "" {
		return youte.Errorf(youte.EINVALID, "run identifier or parameters required")
	}

	rs := &runState{id: runID, session: e.Session}
	if rs.session == "" {
		rs.session = uuid.NewString()
	}

	e.emit(ProgressEvent{Type: ProgressState, State: StateSeeding, Run: runID})

	store, err := e.Stores.OpenProgressStore(ctx, runID)
	if err != nil {
		return e.interrupted(ctx, rs, err)
	}
	defer store.Close()
	rs.store = store

	if err := e.seed(ctx, rs, run.Params); err != nil {
		// A run resumed by identifier alone that never existed leaves
		// nothing worth keeping.
		if run.Params.Endpoint == "" && youte.ErrorCode(err) == youte.ENOTFOUND {
			_ = store.Destroy()
		}
		return e.interrupted(ctx, rs, err)
	}

	for i, scope := range rs.scopes {
		rs.scope = i
		if err := e.drainScope(ctx, rs, scope, yield); err != nil {
			return err
		}
		if i < len(rs.scopes)-1 {
			e.emit(e.scopeEvent(rs, ProgressEvent{Type: ProgressState, State: StateAdvancing, Scope: scope}))
		}
	}

	e.emit(ProgressEvent{Type: ProgressState, State: StateDrained, Run: runID})

	pending, err := store.CountPending(ctx)
	if err != nil {
		return e.interrupted(ctx, rs, err)
	}
	if pending > 0 {
		return youte.Errorf(youte.EINTERNAL, "run %s drained with %d pending cursors", runID, pending)
	}
	if err := store.Destroy(); err != nil {
		return fmt.Errorf("destroy progress of run %s: %w", runID, err)
	}

	e.emit(ProgressEvent{Type: ProgressState, State: StateDone, Run: runID})
	return nil
}

// seed stores or validates the run parameters and prepares the request
// template and scopes.
func (e *Engine) seed(ctx context.Context, rs *runState, requested youte.RunParams) error {
	stored, err := rs.store.LoadMeta(ctx)
	switch {
	case youte.ErrorCode(err) == youte.ENOTFOUND:
		if requested.Endpoint == "" {
			return youte.Errorf(youte.ENOTFOUND, "run %q has no stored parameters", rs.id)
		}
		if err := rs.store.StoreMeta(ctx, requested); err != nil {
			return err
		}
		rs.params = requested
	case err != nil:
		return err
	case requested.Endpoint == "":
		rs.params = stored
	case !stored.Equal(requested):
		return youte.Errorf(youte.ECONFLICT,
			"run %q was started with different parameters; resume it without changes or start a new run", rs.id)
	default:
		rs.params = stored
	}

	endpoint, err := youte.FindEndpoint(rs.params.Endpoint)
	if err != nil {
		return youte.WrapError(youte.ECONFIG, err, "run %q has unusable stored parameters", rs.id)
	}
	if endpoint.Cost > e.maxQuota() {
		return youte.Errorf(youte.EINVALID, "%s costs %d units, above the quota ceiling of %d",
			endpoint.Name, endpoint.Cost, e.maxQuota())
	}

	rs.spec = youte.NewRequestSpec(e.BaseURL, endpoint, rs.params.Params)
	if _, err := url.Parse(rs.spec.URL); err != nil {
		return youte.WrapError(youte.EINVALID, err, "invalid endpoint URL")
	}
	rs.scopes = Scopes(endpoint.Mode, rs.params.IDs)
	return nil
}

// drainScope fetches pending cursors of one scope until none remain.
func (e *Engine) drainScope(ctx context.Context, rs *runState, scope string, yield func(*youte.ResponsePage, error) bool) error {
	e.emit(e.scopeEvent(rs, ProgressEvent{Type: ProgressState, State: StateFetching, Scope: scope}))

	for {
		if ctx.Err() != nil {
			return e.interrupted(ctx, rs, ctx.Err())
		}

		tokens, err := rs.store.PendingCursors(ctx, scope)
		if err != nil {
			return e.interrupted(ctx, rs, err)
		}
		if len(tokens) == 0 {
			return nil
		}

		for _, token := range tokens {
			if ctx.Err() != nil {
				return e.interrupted(ctx, rs, ctx.Err())
			}

			page, err := e.fetch(ctx, rs, youte.PageCursor{Token: token, OwnerKey: scope})
			if err != nil {
				return e.interrupted(ctx, rs, err)
			}
			if page == nil {
				continue
			}
			if !yield(page, nil) {
				return errStopped
			}
		}
	}
}

// fetch retrieves one cursor. It returns a nil page when the cursor was
// skipped.
func (e *Engine) fetch(ctx context.Context, rs *runState, cursor youte.PageCursor) (*youte.ResponsePage, error) {
	clock := e.clock()

	var page *youte.ResponsePage
	for {
		if err := e.Quota.HandleLimit(ctx, e.ProviderKey, e.maxQuota(), rs.spec.Cost); err != nil {
			return nil, err
		}

		err := retryTransient(ctx, clock, e.retryDelays(), e.Jitter, func(ctx context.Context) error {
			if e.Limiter != nil {
				if err := e.Limiter.Wait(ctx); err != nil {
					return err
				}
			}
			p, err := e.Executor.Execute(ctx, rs.spec, cursor)
			if err != nil {
				return err
			}
			page = p
			return nil
		}, func(attempt int, err error) {
			e.emit(e.scopeEvent(rs, ProgressEvent{
				Type: ProgressRetry, State: StateFetching, Scope: cursor.OwnerKey,
				Token: cursor.Token, Attempt: attempt, Error: err,
			}))
		})

		switch youte.ErrorCode(err) {
		case "":
		case youte.EQUOTA:
			now := clock.Now()
			wait := youte.NextReset(now).Sub(now) + youte.QuotaResetGrace
			e.emit(e.scopeEvent(rs, ProgressEvent{
				Type: ProgressQuotaWait, State: StateFetching, Scope: cursor.OwnerKey,
				Token: cursor.Token, Wait: wait, Error: err,
			}))
			if err := clock.Sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		case youte.ESKIPPED:
			if err := rs.store.MarkRetrieved(context.WithoutCancel(ctx), cursor.Token, cursor.OwnerKey, clock.Now()); err != nil {
				return nil, err
			}
			e.emit(e.scopeEvent(rs, ProgressEvent{
				Type: ProgressSkipped, State: StateFetching, Scope: cursor.OwnerKey,
				Token: cursor.Token, Error: err,
			}))
			return nil, nil
		default:
			return nil, err
		}
		break
	}

	// The response is fully decoded; account for it even if ctx ends now.
	bctx := context.WithoutCancel(ctx)
	now := clock.Now()

	rec, err := e.Quota.AddQuota(bctx, e.ProviderKey, rs.spec.Cost, now)
	if err != nil {
		return nil, err
	}

	if next := page.NextPageToken(); next != "" && rs.spec.Mode != youte.ModeBatchedIDs {
		discover := true
		if rs.params.MaxPages > 0 {
			n, err := rs.store.CountRetrieved(bctx, cursor.OwnerKey)
			if err != nil {
				return nil, err
			}
			discover = n+1 < rs.params.MaxPages
		}
		if discover {
			if err := rs.store.DiscoverNext(bctx, next, cursor.OwnerKey); err != nil {
				return nil, err
			}
		}
	}

	if err := rs.store.MarkRetrieved(bctx, cursor.Token, cursor.OwnerKey, now); err != nil {
		return nil, err
	}

	cursor.RetrievedAt = &now
	page.Cursor = cursor
	page.Spec = rs.spec
	page.RetrievedAt = now
	page.Run = rs.id
	page.Session = rs.session

	e.emit(e.scopeEvent(rs, ProgressEvent{
		Type: ProgressPage, State: StateFetching, Scope: cursor.OwnerKey,
		Token: cursor.Token, UnitsUsed: rec.UnitsUsed,
	}))
	return page, nil
}

// interrupted converts failures caused by cancellation into EINTERRUPTED.
func (e *Engine) interrupted(ctx context.Context, rs *runState, err error) error {
	if ctx.Err() == nil {
		return err
	}
	e.emit(ProgressEvent{Type: ProgressState, State: StateInterrupted, Run: rs.id})
	return &youte.Error{
		Code:    youte.EINTERRUPTED,
		Message: fmt.Sprintf("run %s interrupted", rs.id),
		Err:     ctx.Err(),
	}
}

func (e *Engine) scopeEvent(rs *runState, ev ProgressEvent) ProgressEvent {
	ev.Run = rs.id
	ev.ScopeIndex = rs.scope
	ev.ScopeTotal = len(rs.scopes)
	return ev
}

func (e *Engine) emit(ev ProgressEvent) {
	if e.Progress != nil {
		e.Progress(ev)
	}
}

func (e *Engine) clock() youte.Clock {
	if e.Clock == nil {
		return youte.SystemClock{}
	}
	return e.Clock
}

func (e *Engine) maxQuota() int {
	if e.MaxQuota <= 0 {
		return youte.DefaultMaxQuota
	}
	return e.MaxQuota
}

func (e *Engine) retryDelays() []time.Duration {
	if e.RetryDelays == nil {
		return DefaultRetryDelays()
	}
	return e.RetryDelays
}
