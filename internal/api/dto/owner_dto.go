package dto

import "github.com/spec-kit/ticket-tools/internal/domain"

// OwnerResponse is a directory entry.
type OwnerResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// OwnerMatchResponse is a name lookup hit.
type OwnerMatchResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// NewOwners maps owners and never returns nil.
func NewOwners(owners []domain.Owner) []OwnerResponse {
	items := make([]OwnerResponse, 0, len(owners))
	for _, o := range owners {
		items = append(items, OwnerResponse{ID: o.ID, Email: o.Email, FirstName: o.FirstName, LastName: o.LastName})
	}
	return items
}

// NewOwnerMatches maps lookup results and never returns nil.
func NewOwnerMatches(matches []domain.OwnerMatch) []OwnerMatchResponse {
	items := make([]OwnerMatchResponse, 0, len(matches))
	for _, m := range matches {
		items = append(items, OwnerMatchResponse{ID: m.ID, Email: m.Email, FullName: m.FullName})
	}
	return items
}
