package platform

import "github.com/google/uuid"

// NewUUID returns a random RFC 4122 v4 UUID string.
func NewUUID() string {
	return uuid.NewString()
}
