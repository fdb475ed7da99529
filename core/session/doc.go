// Package session scopes the resources of a single comparison run: its id, a logger
// tagged with that id and an optional staging store. Close tears them down.
package session
