package utils

import (
	"github.com/google/uuid"
)

// GenerateRequestID returns a new unique identifier for tracing a request
func GenerateRequestID() string {
	return uuid.New().String()
}

// IsValidRequestID reports whether id looks like an id we generated
func IsValidRequestID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
