package prefs

import (
	"sort"
	"strings"

	"github.com/five82/herald/internal/content"
)

// Drift markers record optimistic changes whose remote confirmation failed,
// so a later successful fetch can detect and correct the difference.

const followPrefix = "follow:"

func followPrefixFor(owner content.OwnerKind) string { return followPrefix + owner.String() + ":" }

// FollowDriftKey names the drift marker for a follow toggle.
func FollowDriftKey(owner content.OwnerKind, slug string) string {
	return followPrefixFor(owner) + slug
}

// BookmarkDriftKey names the drift marker for a bookmark toggle.
func BookmarkDriftKey(ref content.Ref) string { return "bookmark:" + ref.String() }

// ShoutoutDriftKey names the drift marker for a shout-out.
func ShoutoutDriftKey(id string) string { return "shoutout:" + id }

// MarkDrift records that key's local state may disagree with the server.
func (c *Cache) MarkDrift(key string) {
	c.mu.Lock()
	c.drift[key] = struct{}{}
	c.mu.Unlock()
	c.scheduleSave()
}

// ClearDrift removes the marker for key.
func (c *Cache) ClearDrift(key string) {
	c.mu.Lock()
	_, ok := c.drift[key]
	delete(c.drift, key)
	c.mu.Unlock()
	if ok {
		c.scheduleSave()
	}
}

// Drifted returns every outstanding marker, sorted.
func (c *Cache) Drifted() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.drift)
}

// FollowDrifted reports whether any follow change for owners of kind owner
// is still unconfirmed.
func (c *Cache) FollowDrifted(owner content.OwnerKind) bool {
	prefix := followPrefixFor(owner)
	c.mu.RLock()
	defer c.mu.RUnlock()
	for key := range c.drift {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// ReconcileShoutouts clears the shout-out marker for id once the server's
// count has caught up with the local one. It reports whether a marker is
// still outstanding. The displayed count never drops either way.
func (c *Cache) ReconcileShoutouts(id string, serverCount int) bool {
	key := ShoutoutDriftKey(id)
	c.mu.Lock()
	_, marked := c.drift[key]
	if !marked {
		c.mu.Unlock()
		return false
	}
	if serverCount < c.itemCounts[id] {
		c.mu.Unlock()
		return true
	}
	delete(c.drift, key)
	c.mu.Unlock()
	c.scheduleSave()
	return false
}

// ReconcileFollowed takes the server's followed slugs for owners of kind
// owner as authoritative for every slug of that kind with an outstanding
// follow marker, and clears those markers. Slugs without a marker keep their
// local state. It returns the slugs whose local membership changed.
func (c *Cache) ReconcileFollowed(owner content.OwnerKind, serverSlugs []string) []string {
	prefix := followPrefixFor(owner)
	server := make(map[string]struct{}, len(serverSlugs))
	for _, s := range serverSlugs {
		server[s] = struct{}{}
	}

	c.mu.Lock()
	var changed []string
	for key := range c.drift {
		slug, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		_, remote := server[slug]
		_, local := c.followed[owner][slug]
		if remote != local {
			c.setFollowedLocked(owner, slug, remote)
			changed = append(changed, slug)
		}
		delete(c.drift, key)
	}
	c.mu.Unlock()

	sort.Strings(changed)
	c.scheduleSave()
	return changed
}
