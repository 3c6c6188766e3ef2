// Package ui is the Bubble Tea terminal front end.
//
// One Model drives six tabs (home, publications, magazines, flyers, search
// and the weekly debrief), each backed by a reader screen. Entering a tab
// issues its initial fetch; controllers ignore the repeat when the tab is
// entered again. Fetches run as tea.Cmds and report back with a loadedMsg so
// the Update loop never blocks on the network.
//
// Moving the selection onto the trailing entry of a paginated list (the
// following feed on home, magazines) asks for the next page. Follow,
// bookmark and shout-out keys go through the engage reconciler, so the
// change shows immediately and a "…" marks entries whose mutation is still
// unconfirmed. A red banner shows while any section of the current tab is
// failing; r retries.
//
// Push notifications arrive on Options.Pushes and open the article detail
// or switch to the debrief tab.
package ui
