package types

import (
	"time"

	"github.com/google/uuid"
)

// RevisionID identifies one published form revision (UUIDv7).
type RevisionID string

// NewRevisionID generates a UUIDv7 revision identifier.
// Time-ordered IDs keep a shop's revisions sorted by publish time.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRevisionID() RevisionID {
	return RevisionID(uuid.Must(uuid.NewV7()).String())
}

// ParseRevisionID validates and converts a string to RevisionID.
func ParseRevisionID(s string) (RevisionID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return RevisionID(s), nil
}

// RevisionTime extracts the publish timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func RevisionTime(id RevisionID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
