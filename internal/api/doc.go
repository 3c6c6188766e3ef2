// Package api is the GraphQL client for the reader backend.
//
// Client POSTs query documents with JSON variables, waits on a client-side
// rate limiter before every request, and surfaces GraphQL-level errors as
// *Error. Collections are decoded element by element: an element that fails
// to decode or validate is logged and dropped rather than failing the fetch.
//
// Paginated queries use offset cursors encoded as decimal strings. A page is
// reported as having more when the server returned a full page.
package api
