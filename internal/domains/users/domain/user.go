package domain

import (
	"errors"
	"time"
)

var ErrInvalidID = errors.New("user id must be greater than zero")

// User is the beneficiary record the core reads and writes; the chat layer
// owns everything else about it.
type User struct {
	ID           int64
	LastActivity time.Time
	HasAccess    bool
}

// NewUser constructs a user seen for the first time.
func NewUser(id int64, seenAt time.Time) (*User, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return &User{ID: id, LastActivity: seenAt}, nil
}
