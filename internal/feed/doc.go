// Package feed drives the lifecycle of remote-backed lists.
//
// A Controller owns one list for one screen and moves through three phases:
//
//	Loading ──initial fetch ok──▶ Results ──Refresh──▶ Reloading ──▶ Results
//	   ▲  │                          │                       │
//	   │  └─failure: stay, flag      └─FetchNextPage(last)   └─failure: previous
//	   └──────────────Reset──────────────────────────────       results, flag
//
// Failures are never returned to callers. They are recorded on a state.Board
// under the controller's key so a front end can show an error affordance
// without losing the data already on screen.
//
// Pagination is edge-triggered through a Latch: a page is requested once per
// trailing item, and only while the previous response said more pages exist.
//
// A Composite groups controllers whose sections load side by side and may
// complete in any order.
package feed
