// Package engage reconciles optimistic user actions with the backend.
//
// Each action changes the preference cache and emits its analytics event
// before any network call. The remote mutation then runs in the background:
//
//	Idle ──action──▶ Submitting ──settled──▶ Idle
//
// The visible value changes on the way in; only the busy flag changes on the
// way out. Failures are logged and leave a drift marker in the cache instead
// of rolling back, so the next successful fetch can correct the difference.
package engage
