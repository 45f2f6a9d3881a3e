package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusDraft = "draft"
	StatusSent  = "sent"
)

var (
	ErrNotFound        = errors.New("newsletter_not_found")
	ErrSubjectRequired = errors.New("subject_required")
	ErrAlreadySent     = errors.New("newsletter_already_sent")
)

type Newsletter struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID `gorm:"not null;index" json:"org_id"`
	Subject        string       `gorm:"type:text;not null" json:"subject"`
	Content        string       `gorm:"type:text;not null;default:''" json:"content"`
	Status         string       `gorm:"type:text;not null;default:'draft'" json:"status"`
	RecipientCount int64        `gorm:"not null;default:0" json:"recipient_count"`
	SentAt         *time.Time   `json:"sent_at,omitempty"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}

func (Newsletter) TableName() string { return "newsletters" }

type Service interface {
	// SaveDraft creates a draft when id is zero and updates it otherwise.
	SaveDraft(ctx context.Context, orgID, id snowflake.ID, req DraftRequest) (*Newsletter, error)
	Delete(ctx context.Context, id snowflake.ID) error
	List(ctx context.Context, orgID snowflake.ID) ([]*Newsletter, error)
	// MarkSent records the newsletter as sent and returns the number of active
	// members it was addressed to. Nothing is delivered.
	MarkSent(ctx context.Context, id snowflake.ID) (int64, error)
}

type DraftRequest struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}
