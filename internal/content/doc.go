// Package content defines the reader's data model: articles, magazines and
// flyers behind a shared Item capability, plus the publications and
// organizations they belong to and the weekly debrief.
//
// Content items are immutable once fetched except for their engagement
// counters, which the client only ever sees increase. Publications and
// organizations are referenced by slug and never owned by content.
package content
