package models

import "strings"

// User is the display record kept for every bill participant.
// The directory that issues user ids is external; the ledger only mirrors the
// fields it needs for display joins.
type User struct {
	// ID is the directory-issued user id.
	ID int64

	FirstName string
	LastName  string

	// Username is optional and may be empty.
	Username string
}

// DisplayName returns "First Last", falling back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
