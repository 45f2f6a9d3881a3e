package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Repository stores admin accounts. Lookups by email expect the address
// already normalized to lower case.
type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id snowflake.ID) (*User, error)
	MarkPro(ctx context.Context, id snowflake.ID, stripeCustomerID string, at time.Time) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *Session) error
	SessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	// TouchSession bumps last_seen_at unless it was bumped after staleBefore.
	TouchSession(ctx context.Context, sessionID snowflake.ID, at, staleBefore time.Time) error
	RevokeSession(ctx context.Context, sessionID snowflake.ID, at time.Time) error
	// PruneUserSessions drops the user's expired and revoked sessions.
	PruneUserSessions(ctx context.Context, userID snowflake.ID, now time.Time) (int64, error)
}
