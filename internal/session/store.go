// Package session handles conversation session storage.
//
// A session is an ordered, append-only log of conversation turns keyed by
// session id. The log is both the context sent to the model and the text the
// extraction pipeline scans. Unknown session ids are not an error: reading
// one yields an empty history and the first append creates it.
package session

import "context"

// Turn is one message in a session log.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store is an append-only turn log keyed by session id.
//
// The service assumes at most one in-flight turn per session; distinct
// sessions may be used concurrently.
type Store interface {
	// History returns every turn for the session in append order.
	// A missing session returns an empty history, not an error.
	History(ctx context.Context, sessionID string) ([]Turn, error)

	// Append adds turns to the end of the session log, creating the
	// session if needed.
	Append(ctx context.Context, sessionID string, turns ...Turn) error

	// Delete removes a session and its turns. Reports whether the
	// session existed.
	Delete(ctx context.Context, sessionID string) (bool, error)

	// Close releases the store's resources.
	Close() error
}
