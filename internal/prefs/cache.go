// Package prefs holds the reader's local preference cache: followed slugs,
// saved content, locally-applied shout-out counts, shout-out guards, recent
// searches and the installation's device id. The cache is persisted through a
// Persister (TOML file by default) so it survives restarts.
package prefs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/five82/herald/internal/content"
)

// DefaultMaxRecent caps the recent-search list when Options leave it unset.
const DefaultMaxRecent = 10

// Options configure a Cache.
type Options struct {
	// Store persists the cache; nil keeps it in memory only.
	Store Persister
	// SaveDelay coalesces saves that happen within the window. Zero saves
	// synchronously after every mutation.
	SaveDelay time.Duration
	MaxRecent int
	Logger    *slog.Logger
	// NewDeviceID generates the installation id on first open.
	NewDeviceID func() string
}

// Cache is the process-wide store of user-specific overrides to server data.
// It is the only writer of these sets and maps; reads never block on I/O.
type Cache struct {
	mu          sync.RWMutex
	deviceID    string
	followed    map[content.OwnerKind]map[string]struct{}
	saved       map[content.Kind]map[string]struct{}
	itemCounts  map[string]int
	ownerCounts map[string]int
	shouted     map[string]struct{}
	recent      []string
	drift       map[string]struct{}
	maxRecent   int

	store     Persister
	saveDelay time.Duration
	logger    *slog.Logger
	fold      cases.Caser // not goroutine-safe; use only under mu write lock

	saveMu  sync.Mutex
	timerMu sync.Mutex
	timer   *time.Timer
}

// Open loads the persisted cache and returns it ready for use. A missing
// device id is generated and saved immediately.
func Open(ctx context.Context, opts Options) (*Cache, error) {
	c := newCache(opts)

	if c.store != nil {
		snap, err := c.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load preference cache: %w", err)
		}
		c.restore(snap)
	}

	if c.deviceID == "" {
		gen := opts.NewDeviceID
		if gen == nil {
			gen = uuid.NewString
		}
		c.deviceID = gen()
		if err := c.Flush(ctx); err != nil {
			return nil, fmt.Errorf("persist device id: %w", err)
		}
	}
	return c, nil
}

func newCache(opts Options) *Cache {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxRecent := opts.MaxRecent
	if maxRecent <= 0 {
		maxRecent = DefaultMaxRecent
	}
	return &Cache{
		followed:    make(map[content.OwnerKind]map[string]struct{}),
		saved:       make(map[content.Kind]map[string]struct{}),
		itemCounts:  make(map[string]int),
		ownerCounts: make(map[string]int),
		shouted:     make(map[string]struct{}),
		drift:       make(map[string]struct{}),
		maxRecent:   maxRecent,
		store:       opts.Store,
		saveDelay:   opts.SaveDelay,
		logger:      logger.With("component", "prefs"),
		fold:        cases.Fold(),
	}
}

// DeviceID returns the installation identifier used as the submission key.
func (c *Cache) DeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deviceID
}

// IsFollowed reports whether the owner of kind owner named slug is followed.
func (c *Cache) IsFollowed(owner content.OwnerKind, slug string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.followed[owner][slug]
	return ok
}

// Followed returns the followed slugs of kind owner, sorted.
func (c *Cache) Followed(owner content.OwnerKind) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.followed[owner])
}

// ToggleFollowed flips membership of slug and returns the new membership.
func (c *Cache) ToggleFollowed(owner content.OwnerKind, slug string) bool {
	c.mu.Lock()
	_, ok := c.followed[owner][slug]
	c.setFollowedLocked(owner, slug, !ok)
	c.mu.Unlock()
	c.scheduleSave()
	return !ok
}

// SetFollowed forces membership of slug.
func (c *Cache) SetFollowed(owner content.OwnerKind, slug string, followed bool) {
	c.mu.Lock()
	c.setFollowedLocked(owner, slug, followed)
	c.mu.Unlock()
	c.scheduleSave()
}

func (c *Cache) setFollowedLocked(owner content.OwnerKind, slug string, followed bool) {
	set := c.followed[owner]
	if !followed {
		delete(set, slug)
		return
	}
	if set == nil {
		set = make(map[string]struct{})
		c.followed[owner] = set
	}
	set[slug] = struct{}{}
}

// IsSaved reports whether the content is bookmarked.
func (c *Cache) IsSaved(ref content.Ref) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.saved[ref.Kind][ref.ID]
	return ok
}

// Saved returns the bookmarked ids of kind, sorted.
func (c *Cache) Saved(kind content.Kind) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.saved[kind])
}

// ToggleSaved flips the bookmark for ref and returns the new state.
func (c *Cache) ToggleSaved(ref content.Ref) bool {
	c.mu.Lock()
	set := c.saved[ref.Kind]
	if set == nil {
		set = make(map[string]struct{})
		c.saved[ref.Kind] = set
	}
	_, ok := set[ref.ID]
	if ok {
		delete(set, ref.ID)
	} else {
		set[ref.ID] = struct{}{}
	}
	c.mu.Unlock()
	c.scheduleSave()
	return !ok
}

// CanIncrementShoutout reports whether this device has not yet shouted out id.
func (c *Cache) CanIncrementShoutout(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, done := c.shouted[id]
	return !done
}

// IncrementShoutout applies a shout-out for item as one step: the item's
// count, its owner's count and the device guard change together. It returns
// false, changing nothing, when the guard is already closed for the item.
func (c *Cache) IncrementShoutout(item content.Item) bool {
	id := item.Ref().ID
	c.mu.Lock()
	if _, done := c.shouted[id]; done {
		c.mu.Unlock()
		return false
	}
	c.itemCounts[id] = max(item.Engagement(), c.itemCounts[id]) + 1
	if slug := item.OwnerSlug(); slug != "" {
		c.ownerCounts[slug] = max(item.OwnerEngagement(), c.ownerCounts[slug]) + 1
	}
	c.shouted[id] = struct{}{}
	c.mu.Unlock()
	c.scheduleSave()
	return true
}

// EffectiveShoutouts is the count to display for content id: the greater of
// the server's count and the locally-applied one.
func (c *Cache) EffectiveShoutouts(id string, serverCount int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return max(serverCount, c.itemCounts[id])
}

// EffectiveOwnerShoutouts is EffectiveShoutouts for a publication or
// organization aggregate.
func (c *Cache) EffectiveOwnerShoutouts(slug string, serverCount int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return max(serverCount, c.ownerCounts[slug])
}

// RecentSearches returns queries most-recent first.
func (c *Cache) RecentSearches() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.recent))
	copy(out, c.recent)
	return out
}

// AddRecentSearch records query at the head of the list, dropping any
// earlier entry that matches case-insensitively and truncating to the cap.
func (c *Cache) AddRecentSearch(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	c.mu.Lock()
	key := c.fold.String(query)
	next := make([]string, 0, c.maxRecent)
	next = append(next, query)
	for _, q := range c.recent {
		if len(next) == c.maxRecent {
			break
		}
		if c.fold.String(q) == key {
			continue
		}
		next = append(next, q)
	}
	c.recent = next
	c.mu.Unlock()
	c.scheduleSave()
}

// RemoveRecentSearch deletes query from the list.
func (c *Cache) RemoveRecentSearch(query string) {
	c.mu.Lock()
	key := c.fold.String(strings.TrimSpace(query))
	next := c.recent[:0]
	for _, q := range c.recent {
		if c.fold.String(q) != key {
			next = append(next, q)
		}
	}
	c.recent = next
	c.mu.Unlock()
	c.scheduleSave()
}

// Snapshot returns the persisted form of the cache.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		DeviceID:       c.deviceID,
		Followed:       sortedKeys(c.followed[content.OwnerPublication]),
		FollowedOrgs:   sortedKeys(c.followed[content.OwnerOrganization]),
		Saved:          make(map[string][]string, len(c.saved)),
		ItemShoutouts:  make(map[string]int, len(c.itemCounts)),
		OwnerShoutouts: make(map[string]int, len(c.ownerCounts)),
		Shouted:        sortedKeys(c.shouted),
		RecentSearches: append([]string(nil), c.recent...),
		Drift:          sortedKeys(c.drift),
	}
	for kind, ids := range c.saved {
		if len(ids) > 0 {
			snap.Saved[kind.String()] = sortedKeys(ids)
		}
	}
	for id, n := range c.itemCounts {
		snap.ItemShoutouts[id] = n
	}
	for slug, n := range c.ownerCounts {
		snap.OwnerShoutouts[slug] = n
	}
	return snap
}

func (c *Cache) restore(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deviceID = strings.TrimSpace(snap.DeviceID)
	for _, slug := range snap.Followed {
		c.setFollowedLocked(content.OwnerPublication, slug, true)
	}
	for _, slug := range snap.FollowedOrgs {
		c.setFollowedLocked(content.OwnerOrganization, slug, true)
	}
	for name, ids := range snap.Saved {
		kind, err := content.ParseKind(name)
		if err != nil {
			c.logger.Warn("dropping saved content of unknown kind", "kind", name)
			continue
		}
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		c.saved[kind] = set
	}
	for id, n := range snap.ItemShoutouts {
		c.itemCounts[id] = n
	}
	for slug, n := range snap.OwnerShoutouts {
		c.ownerCounts[slug] = n
	}
	for _, id := range snap.Shouted {
		c.shouted[id] = struct{}{}
	}
	for _, key := range snap.Drift {
		c.drift[key] = struct{}{}
	}
	for _, q := range snap.RecentSearches {
		if len(c.recent) == c.maxRecent {
			break
		}
		c.recent = append(c.recent, q)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
