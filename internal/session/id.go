package session

import (
	"github.com/google/uuid"
)

// ID identifies one browser session
type ID string

// NewID creates a time-ordered session identifier, falling back to a random
// v4 UUID if v7 generation fails
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// ParseID accepts only well formed UUIDs so clients cannot pick arbitrary keys
func ParseID(s string) (ID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return ID(id.String()), true
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}
