package state

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrorKind classifies the failure recorded for a screen.
type ErrorKind int

const (
	// ErrorNone means the last fetch for the screen succeeded (or none ran).
	ErrorNone ErrorKind = iota
	// ErrorTransient means the most recent fetch failed once.
	ErrorTransient
	// ErrorPersistent means the fetch kept failing after a retry.
	ErrorPersistent
)

// persistentAfter is the number of consecutive failures at which a screen is
// considered persistently failing.
const persistentAfter = 2

func (k ErrorKind) String() string {
	switch k {
	case ErrorTransient:
		return "transient"
	case ErrorPersistent:
		return "persistent"
	default:
		return "none"
	}
}

// Failure is the failure state of one screen or section.
type Failure struct {
	Kind                ErrorKind
	LastError           error
	LastUpdated         time.Time
	ConsecutiveFailures int
}

// Failed reports whether the screen should show a network-error affordance.
func (f Failure) Failed() bool {
	return f.Kind != ErrorNone
}

// Board records fetch failures keyed by screen identity. The zero value is
// ready to use.
type Board struct {
	mu      sync.RWMutex
	entries map[string]Failure
}

// Record stores the outcome of a fetch for key. A nil err clears the entry;
// a non-nil err bumps the consecutive failure count.
func (b *Board) Record(key string, err error) {
	if err == nil {
		b.Clear(key)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.entries == nil {
		b.entries = make(map[string]Failure)
	}
	f := b.entries[key]
	f.ConsecutiveFailures++
	f.LastError = err
	f.LastUpdated = time.Now()
	f.Kind = ErrorTransient
	if f.ConsecutiveFailures >= persistentAfter {
		f.Kind = ErrorPersistent
	}
	b.entries[key] = f
}

// Clear resets key to ErrorNone.
func (b *Board) Clear(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
}

// Get returns a copy of the failure state for key.
func (b *Board) Get(key string) Failure {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneFailure(b.entries[key])
}

// Failing returns the keys currently in a failed state, sorted.
func (b *Board) Failing() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of every recorded failure.
func (b *Board) Snapshot() map[string]Failure {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]Failure, len(b.entries))
	for k, f := range b.entries {
		out[k] = cloneFailure(f)
	}
	return out
}

func cloneFailure(f Failure) Failure {
	if f.LastError != nil {
		f.LastError = fmt.Errorf("%w", f.LastError)
	}
	return f
}
