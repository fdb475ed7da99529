// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber app from this Config: the listen port, the API key
// enforced by middleware/auth, and the request body limit that bounds uploaded
// workbooks.
package server
