// Package app is the composition root of the Herald client.
//
// New loads the configuration and wires the pieces together:
//
//	config.Load()           client configuration
//	newLogger()             slog text handler, log_file or caller-supplied writer
//	prefs.FileStore or      preference cache persistence, per cache_backend
//	  storage.Open()
//	prefs.Open()            process-wide preference cache
//	api.NewClient()         rate-limited GraphQL client
//	analytics.Multi         log sink plus optional JSON-lines journal
//	engage.New()            optimistic mutation reconciler
//	reader.NewScreens()     one controller set per screen, sharing a failure board
//
// Three front ends sit on top: RunTUI (terminal reader with a background
// poller on the home screen), RunPush (push notification receiver) and
// RunWidget (prints a widget timeline without touching the cache).
//
// # Polling
//
// The poller refreshes the home screen every poll_interval (default five
// minutes). After a failure it retries sooner, starting at two seconds and
// doubling per consecutive failure, capped at thirty seconds and never
// longer than the regular interval.
//
// # Shutdown
//
// Close waits for queued mutations to settle, flushes the preference cache
// and closes the journal, database and log file in reverse order of opening.
package app
