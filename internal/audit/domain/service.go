package domain

import (
	"context"
	"errors"
	"time"

	"github.com/andreasgmg/fornet/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	ActionSettingsUpdated     = "org.settings_updated"
	ActionModuleToggled       = "org.module_toggled"
	ActionSnowStatusUpdated   = "org.snow_status_updated"
	ActionSitePasswordSet     = "org.site_password_set"
	ActionSitePasswordCleared = "org.site_password_cleared"
	ActionMemberInvited       = "member.invited"
	ActionMemberRemoved       = "member.removed"
	ActionApplicationApproved = "application.approved"
	ActionApplicationRejected = "application.rejected"
	ActionNewsletterSent      = "newsletter.sent"
	ActionDocumentDeleted     = "document.deleted"
	ActionResourceDeleted     = "resource.deleted"
	ActionBookingCancelled    = "booking.cancelled"
)

// AuditLog is one admin action on an organization.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID      `gorm:"not null;index:ix_audit_logs_org_created,priority:1" json:"org_id"`
	ActorID    *snowflake.ID     `json:"actor_id,omitempty"`
	ActorEmail string            `gorm:"type:text;not null;default:''" json:"actor_email"`
	Action     string            `gorm:"type:text;not null" json:"action"`
	TargetType string            `gorm:"type:text;not null" json:"target_type"`
	TargetID   *string           `gorm:"type:text" json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	IPAddress  *string           `gorm:"type:text" json:"ip_address,omitempty"`
	UserAgent  *string           `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index:ix_audit_logs_org_created,priority:2" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// Entry describes an action to record. The actor comes from the request
// identity.
type Entry struct {
	OrgID      snowflake.ID
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
	IPAddress  string
	UserAgent  string
}

type ListAuditLogRequest struct {
	pagination.Pagination
	Action string `form:"action"`
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	OrgID  snowflake.ID
	Action string
	Cursor *AuditCursor
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, entry *AuditLog) error
	List(ctx context.Context, filter ListFilter) ([]*AuditLog, error)
}

type Service interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, orgID snowflake.ID, req ListAuditLogRequest) (*ListAuditLogResponse, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidAction       = errors.New("invalid_action")
)
