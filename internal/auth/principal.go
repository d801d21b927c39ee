package auth

import "time"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    uint
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

func PrincipalFromClaims(c *Claims) Principal {
	p := Principal{UserID: c.UserID, Email: c.Email, TokenID: c.ID}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}
