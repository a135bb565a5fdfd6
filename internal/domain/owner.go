package domain

import "strings"

// Owner is a directory user who can be assigned tickets.
type Owner struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// FullName returns "first last" with surrounding space trimmed.
func (o Owner) FullName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// OwnerMatch is the projection returned by name lookups.
type OwnerMatch struct {
	ID       string
	Email    string
	FullName string
}
