// Package reader assembles the client's screens from fetch controllers.
//
// Each screen owns one controller per list and records failures on a shared
// state.Board under keys such as "home/trending" or "search/flyers". Rows
// combine server data with the preference cache so counts shown are
// effective counts and follow and bookmark marks reflect local changes
// immediately.
//
// Successful fetches also settle drift: shout-out markers clear once the
// server's count catches up, and the publications screen lets the server's
// followed set settle unconfirmed follow changes.
package reader
