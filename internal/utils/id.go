package utils

import "github.com/google/uuid"

// NewConnID returns a unique identifier for a websocket connection.
// Connection IDs are not stable across reconnects.
func NewConnID() string {
	return uuid.NewString()
}
