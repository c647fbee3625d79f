// Package model provides the chat model interface and its HTTP client.
package model

import "context"

// Model is the external language model the coach calls once per turn. The
// pipeline treats it as a black box: ordered messages in, free text out.
type Model interface {
	// Generate runs inference on the model.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// IsAvailable checks if the model is ready.
	IsAvailable() bool

	// Name returns the model identifier.
	Name() string
}
