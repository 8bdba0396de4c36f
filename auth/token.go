package auth

import (
	"chat-client/domain"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials is the authenticated identity handed explicitly to every
// component that talks to the API. Nothing reads it from ambient storage.
type Credentials struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func NewCredentials(payload domain.AuthPayload) Credentials {
	return Credentials{Token: payload.Token, User: payload.User}
}

func (c Credentials) Authenticated() bool {
	return c.Token != ""
}

// ExpiresAt reads the exp claim without verifying the signature:
// the client never holds the server secret, it only wants to avoid
// replaying a token the server will refuse anyway.
// Opaque tokens report ok=false.
func (c Credentials) ExpiresAt() (time.Time, bool) {
	if c.Token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.Token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (c Credentials) Expired(now time.Time) bool {
	exp, ok := c.ExpiresAt()
	return ok && !now.Before(exp)
}
