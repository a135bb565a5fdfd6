package domain

import "time"

// Scope limits what a tool client may call.
type Scope string

const (
	ScopeRead  Scope = "tickets:read"
	ScopeWrite Scope = "tickets:write"
)

// Client is an authenticated caller of the tool API.
type Client struct {
	ID     string
	Scopes []Scope
}

// HasScope reports whether the client was granted scope.
func (c *Client) HasScope(scope Scope) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Token represents issued access token metadata.
type Token struct {
	AccessToken string
	ClientID    string
	ExpiresAt   time.Time
}
