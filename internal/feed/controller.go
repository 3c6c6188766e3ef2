package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/five82/herald/internal/state"
)

// Phase is the lifecycle tag of a screen's remote-backed data.
type Phase int

const (
	// PhaseLoading has no data yet; it is the initial phase.
	PhaseLoading Phase = iota
	// PhaseReloading shows the previous results while a refresh is in flight.
	PhaseReloading
	// PhaseResults holds the latest results until the next action.
	PhaseResults
)

func (p Phase) String() string {
	switch p {
	case PhaseReloading:
		return "reloading"
	case PhaseResults:
		return "results"
	default:
		return "loading"
	}
}

// Page is one response from a remote query. Cursor and HasMore are only
// meaningful for paginated queries.
type Page[T any] struct {
	Items   []T
	Cursor  string
	HasMore bool
}

// Fetcher issues the remote query for a page starting at cursor. The empty
// cursor requests the first page.
type Fetcher[T any] func(ctx context.Context, cursor string) (Page[T], error)

// State is a copy of a controller's data at a point in time.
type State[T any] struct {
	Phase   Phase
	Items   []T
	Cursor  string
	HasMore bool
	// Busy reports an outstanding fetch of any kind.
	Busy bool
}

// Options configure a Controller.
type Options[T any] struct {
	// Key identifies the screen or section; failures are recorded under it.
	Key   string
	Fetch Fetcher[T]
	// ID returns the identity of an item. Required for pagination.
	ID       func(T) string
	Failures *state.Board
	Logger   *slog.Logger
	// OnResults, when set, receives the items of every successful fetch after
	// they have been applied.
	OnResults func([]T)
}

// Controller owns the Loading/Reloading/Results lifecycle of one list and
// keeps fetches from overlapping. Methods block for the duration of the
// remote query and are safe to call from multiple goroutines; state is only
// mutated while holding the controller's lock.
type Controller[T any] struct {
	key       string
	fetch     Fetcher[T]
	id        func(T) string
	failures  *state.Board
	logger    *slog.Logger
	onResults func([]T)

	mu      sync.Mutex
	st      State[T]
	started bool
	gen     uint64
	latch   Latch
}

// New builds a Controller in the Loading phase.
func New[T any](opts Options[T]) *Controller[T] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	failures := opts.Failures
	if failures == nil {
		failures = &state.Board{}
	}
	return &Controller[T]{
		key:       opts.Key,
		fetch:     opts.Fetch,
		id:        opts.ID,
		failures:  failures,
		logger:    logger.With("screen", opts.Key),
		onResults: opts.OnResults,
	}
}

// Key returns the screen identity.
func (c *Controller[T]) Key() string {
	return c.key
}

// Phase returns the current lifecycle phase.
func (c *Controller[T]) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.Phase
}

// State returns a copy of the current state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.st
	snap.Items = cloneItems(c.st.Items)
	return snap
}

// Failure returns the failure recorded for this controller's key.
func (c *Controller[T]) Failure() state.Failure {
	return c.failures.Get(c.key)
}

// StartInitialFetch issues the first query. It is a no-op, returning false,
// unless the controller is in its unfetched Loading state, so duplicate
// "appeared" signals issue a single query. On failure the controller stays in
// Loading and a later call may retry.
func (c *Controller[T]) StartInitialFetch(ctx context.Context) bool {
	c.mu.Lock()
	if c.st.Phase != PhaseLoading || c.started || c.st.Busy {
		c.mu.Unlock()
		return false
	}
	c.started = true
	c.st.Busy = true
	gen := c.gen
	c.mu.Unlock()

	page, err := c.fetch(ctx, "")

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return true
	}
	c.st.Busy = false
	if err != nil {
		c.started = false
		c.mu.Unlock()
		c.recordFailure("initial fetch", err)
		return true
	}
	c.st = State[T]{
		Phase:   PhaseResults,
		Items:   cloneItems(page.Items),
		Cursor:  page.Cursor,
		HasMore: page.HasMore && len(page.Items) > 0,
	}
	c.latch.Reset()
	c.mu.Unlock()

	c.recordSuccess(page.Items)
	return true
}

// Refresh re-issues the first-page query while keeping the current results
// visible. It only runs from PhaseResults with nothing in flight; otherwise it
// returns false and leaves the state untouched. On failure the previous
// results are restored and a failure is recorded.
func (c *Controller[T]) Refresh(ctx context.Context) bool {
	c.mu.Lock()
	if c.st.Phase != PhaseResults || c.st.Busy {
		c.mu.Unlock()
		return false
	}
	prev := c.st
	c.st.Phase = PhaseReloading
	c.st.Busy = true
	gen := c.gen
	c.mu.Unlock()

	page, err := c.fetch(ctx, "")

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return true
	}
	if err != nil {
		c.st = prev
		c.st.Busy = false
		c.mu.Unlock()
		c.recordFailure("refresh", err)
		return true
	}
	c.st = State[T]{
		Phase:   PhaseResults,
		Items:   cloneItems(page.Items),
		Cursor:  page.Cursor,
		HasMore: page.HasMore && len(page.Items) > 0,
	}
	c.latch.Reset()
	c.mu.Unlock()

	c.recordSuccess(page.Items)
	return true
}

// FetchNextPage loads the page after the trailing item afterID. It fires at
// most once per trailing item: the call must name the current last item,
// more pages must be available, nothing may be in flight, and the boundary
// latch must not already be tripped for afterID. A failed page releases the
// latch so the next visibility signal can retry.
func (c *Controller[T]) FetchNextPage(ctx context.Context, afterID string) bool {
	c.mu.Lock()
	if c.st.Phase != PhaseResults || c.st.Busy || !c.st.HasMore || len(c.st.Items) == 0 || c.id == nil {
		c.mu.Unlock()
		return false
	}
	if c.id(c.st.Items[len(c.st.Items)-1]) != afterID {
		c.mu.Unlock()
		return false
	}
	if !c.latch.Trip(afterID) {
		c.mu.Unlock()
		return false
	}
	cursor := c.st.Cursor
	c.st.Busy = true
	gen := c.gen
	c.mu.Unlock()

	page, err := c.fetch(ctx, cursor)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return true
	}
	c.st.Busy = false
	if err != nil {
		c.latch.Release(afterID)
		c.mu.Unlock()
		c.recordFailure("next page", err)
		return true
	}
	c.st.Items = append(c.st.Items, page.Items...)
	c.st.Cursor = page.Cursor
	c.st.HasMore = page.HasMore && len(page.Items) > 0
	c.mu.Unlock()

	c.recordSuccess(page.Items)
	return true
}

// Reset returns the controller to its unfetched Loading state. Completions of
// fetches issued before the reset are discarded.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.st = State[T]{}
	c.started = false
	c.latch.Reset()
}

func (c *Controller[T]) recordFailure(op string, err error) {
	c.logger.Warn("fetch failed", "op", op, "error", err)
	c.failures.Record(c.key, err)
}

func (c *Controller[T]) recordSuccess(items []T) {
	c.failures.Clear(c.key)
	if c.onResults != nil {
		c.onResults(cloneItems(items))
	}
}

func cloneItems[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
