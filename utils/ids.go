package utils

import "github.com/google/uuid"

// NewID returns a random identifier used as a document _id.
func NewID() string {
	return uuid.NewString()
}

// IsID reports whether s looks like an identifier produced by NewID.
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
