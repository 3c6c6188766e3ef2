// Package analytics names and records user-action events.
//
// Every follow, unfollow, bookmark, unbookmark, shout-out, share and open
// produces exactly one Event at the moment the local change is applied, not
// when the server confirms it. Sinks decide where events go: the structured
// log (LogSink), a JSON-lines file (Journal) or memory (Recorder, for tests).
package analytics
