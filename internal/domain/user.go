// Package domain contains entity without logic, just meta-data
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

const MaxUserIDLen = 64

type (
	// ConnID is the opaque handle of one live connection. Owned by the transport.
	ConnID string
	// UserID is supplied by the client on join.
	UserID string
)

// NewConnID is a tiny helper so adapters never invent their own id scheme.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// ParseUserID rejects ids longer than MaxUserIDLen bytes. An empty id is
// returned as is; the registry reports it as ErrNoUserID.
func ParseUserID(raw string) (UserID, error) {
	if len(raw) > MaxUserIDLen {
		return "", fmt.Errorf("user id longer than %d bytes: %w", MaxUserIDLen, ErrBadPayload)
	}
	return UserID(raw), nil
}
