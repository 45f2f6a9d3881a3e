package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Signup(ctx context.Context, req SignupRequest, meta ClientMeta) (*LoginResult, error)
	Login(ctx context.Context, req LoginRequest, meta ClientMeta) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, *User, error)
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
	MarkPro(ctx context.Context, userID snowflake.ID, stripeCustomerID string) error
}

// InviteClaimer turns pending memberships addressed to email into active ones.
// It runs every time a session is established.
type InviteClaimer interface {
	ClaimInvites(ctx context.Context, userID snowflake.ID, email string) (int64, error)
}

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ClientMeta struct {
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      UserView
	RawToken  string
	ExpiresAt time.Time
	SessionID snowflake.ID
}
