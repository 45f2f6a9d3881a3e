// Package domain contains core types for accounts and login sessions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is a person who can sign in to the admin area.
type User struct {
	ID                  snowflake.ID `gorm:"primaryKey"`
	Email               string       `gorm:"type:text;not null;uniqueIndex"`
	DisplayName         string       `gorm:"type:text;not null;default:''"`
	PasswordHash        *string      `gorm:"type:text"`
	IsPro               bool         `gorm:"column:is_pro;not null;default:false"`
	StripeCustomerID    *string      `gorm:"column:stripe_customer_id;type:text"`
	LastPasswordChanged *time.Time   `gorm:"column:last_password_changed"`
	CreatedAt           time.Time    `gorm:"not null"`
	UpdatedAt           time.Time    `gorm:"not null"`
}

func (User) TableName() string { return "users" }

// Session is a persisted login. Only the SHA-256 of the cookie token is stored.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index"`
	SessionTokenHash string       `gorm:"column:session_token_hash;type:text;not null;uniqueIndex"`
	UserAgent        string       `gorm:"column:user_agent;type:text"`
	IPAddress        string       `gorm:"column:ip_address;type:text"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null"`
}

func (Session) TableName() string { return "sessions" }

// UserView is the public shape of a user returned by /auth/me.
type UserView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IsPro       bool   `json:"is_pro"`
}

func (u User) View() UserView {
	return UserView{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsPro:       u.IsPro,
	}
}
