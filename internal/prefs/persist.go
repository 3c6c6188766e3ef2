package prefs

import (
	"context"
	"fmt"
	"time"
)

// saveTimeout bounds a background save triggered by the debounce timer.
const saveTimeout = 5 * time.Second

// Flush writes the current snapshot to the store. Saves are serialized so an
// older snapshot never overwrites a newer one.
func (c *Cache) Flush(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	if err := c.store.Save(ctx, c.Snapshot()); err != nil {
		return fmt.Errorf("save preference cache: %w", err)
	}
	return nil
}

// Close stops any pending debounced save and flushes the cache.
func (c *Cache) Close(ctx context.Context) error {
	c.timerMu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerMu.Unlock()
	return c.Flush(ctx)
}

func (c *Cache) scheduleSave() {
	if c.store == nil {
		return
	}
	if c.saveDelay <= 0 {
		c.saveNow()
		return
	}

	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.timer != nil {
		return
	}
	c.timer = time.AfterFunc(c.saveDelay, func() {
		c.timerMu.Lock()
		c.timer = nil
		c.timerMu.Unlock()
		c.saveNow()
	})
}

func (c *Cache) saveNow() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := c.Flush(ctx); err != nil {
		c.logger.Error("persist preference cache", "error", err)
	}
}
