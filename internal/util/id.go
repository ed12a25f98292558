package util

import "github.com/google/uuid"

// NewID returns a random UUID string used for run, call and span identifiers.
func NewID() string {
	return uuid.NewString()
}
