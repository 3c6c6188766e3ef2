// Package state records fetch failures per screen for the Herald client.
//
// # Overview
//
// Query failures never propagate out of a fetch controller. Instead the
// controller records them on a Board keyed by screen or section identity
// ("home/trending", "search/flyers", ...). Front ends read the Board to show a
// non-fatal network-error affordance while keeping whatever data is already
// on screen.
//
// # Error Kinds
//
//	ErrorNone        last fetch succeeded, or nothing was fetched yet
//	ErrorTransient   the most recent fetch failed
//	ErrorPersistent  the fetch failed again after a retry (2+ in a row)
//
// A successful fetch clears the entry, resetting the consecutive count.
//
// # Concurrency Model
//
// Board uses a readers-writer lock:
//
//   - Record/Clear: write lock
//   - Get/Failing/Snapshot: read lock
//
// The lock is held only while copying entries, never during network I/O.
//
// # Defensive Copying
//
// Returned Failure values carry a wrapped copy of the error so callers cannot
// observe or mutate the stored instance. errors.Is still matches the original.
//
// # Testing Considerations
//
// The zero Board is ready to use:
//
//	var board state.Board
//	board.Record("home", err)
package state
