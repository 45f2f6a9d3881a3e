package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	TypeContact    = "contact"
	TypeReport     = "report"
	TypeMembership = "membership"
)

var (
	ErrNotFound         = errors.New("form_submission_not_found")
	ErrInvalidType      = errors.New("invalid_form_type")
	ErrEmptySubmission  = errors.New("empty_submission")
	ErrEmailRequired    = errors.New("email_required")
	ErrNotAnApplication = errors.New("not_membership_application")
)

// Submission is a public form post. Data keeps the submitted fields as-is;
// Email is copied out so applications can be matched.
type Submission struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID      `gorm:"not null;index:ix_form_submissions_org_type,priority:1" json:"org_id"`
	Type      string            `gorm:"type:text;not null;index:ix_form_submissions_org_type,priority:2" json:"type"`
	Email     string            `gorm:"type:text;not null;default:''" json:"email"`
	Data      datatypes.JSONMap `gorm:"type:json" json:"data"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
}

func (Submission) TableName() string { return "form_submissions" }

func ValidType(t string) bool {
	switch t {
	case TypeContact, TypeReport, TypeMembership:
		return true
	default:
		return false
	}
}

type Service interface {
	Submit(ctx context.Context, orgID snowflake.ID, formType string, data map[string]any) (*Submission, error)
	List(ctx context.Context, orgID snowflake.ID, formType string) ([]*Submission, error)
	ApproveMembershipApplication(ctx context.Context, submissionID snowflake.ID) error
	RejectMembershipApplication(ctx context.Context, submissionID snowflake.ID) error
}
