package repository

import (
	"context"
	"errors"
)

// ErrTokenNotFound is returned for unknown or expired one-time tokens
var ErrTokenNotFound = errors.New("token not found")

// SessionStore tracks the single active bearer session of each user.
// Starting a session replaces the previous one; revoking drops it.
type SessionStore interface {
	Start(ctx context.Context, userID string) (sessionID string, err error)
	Active(ctx context.Context, userID, sessionID string) (bool, error)
	Revoke(ctx context.Context, userID string) error
}

// ResetTokenStore keeps password reset tokens until consumed or expired.
type ResetTokenStore interface {
	Issue(ctx context.Context, userID string) (token string, err error)
	Lookup(ctx context.Context, token string) (userID string, err error)
	// Consume claims the token exactly once and returns its owner.
	Consume(ctx context.Context, token string) (userID string, err error)
}
