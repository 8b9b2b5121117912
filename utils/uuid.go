package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new random identifier for listings, bids and comments
func GenerateID() string {
	return uuid.NewString()
}

// IsID reports whether s has the shape of an identifier produced by GenerateID
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
