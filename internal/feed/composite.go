package feed

import (
	"context"
	"sync"
)

// Section is one independently-lifecycled part of a composite screen.
// *Controller satisfies it for any item type.
type Section interface {
	Key() string
	Phase() Phase
	Reset()
	StartInitialFetch(ctx context.Context) bool
	Refresh(ctx context.Context) bool
}

var _ Section = (*Controller[string])(nil)

// Composite groups sections that load side by side, such as the per-kind
// result lists of a search. Sections complete in any order.
type Composite struct {
	sections []Section
}

// NewComposite groups sections in display order.
func NewComposite(sections ...Section) *Composite {
	return &Composite{sections: sections}
}

// Sections returns the grouped sections in display order.
func (c *Composite) Sections() []Section {
	out := make([]Section, len(c.sections))
	copy(out, c.sections)
	return out
}

// Loaded reports whether every section holds results.
func (c *Composite) Loaded() bool {
	for _, s := range c.sections {
		if s.Phase() != PhaseResults {
			return false
		}
	}
	return true
}

// Start issues every section's initial fetch concurrently and waits for all
// of them. It returns how many sections actually issued a query.
func (c *Composite) Start(ctx context.Context) int {
	return c.each(func(s Section) bool { return s.StartInitialFetch(ctx) })
}

// Reload refreshes every section in place, keeping current results visible
// while the queries run. Sections that are not showing results are skipped.
func (c *Composite) Reload(ctx context.Context) int {
	return c.each(func(s Section) bool { return s.Refresh(ctx) })
}

// StartOrReload gives each section whichever fetch it is ready for: a
// section still waiting on its initial fetch retries it, a section showing
// results reloads in place. One failing section never holds back the rest.
func (c *Composite) StartOrReload(ctx context.Context) int {
	return c.each(func(s Section) bool {
		return s.StartInitialFetch(ctx) || s.Refresh(ctx)
	})
}

func (c *Composite) each(fn func(Section) bool) int {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		issued int
	)
	for _, s := range c.sections {
		wg.Add(1)
		go func(s Section) {
			defer wg.Done()
			if fn(s) {
				mu.Lock()
				issued++
				mu.Unlock()
			}
		}(s)
	}
	wg.Wait()
	return issued
}

// Refresh resets every section to Loading and reissues all queries.
func (c *Composite) Refresh(ctx context.Context) int {
	for _, s := range c.sections {
		s.Reset()
	}
	return c.Start(ctx)
}
