// Package domain contains persistence models for the org service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	MembershipPending = "pending"
	MembershipActive  = "active"
)

// Organization represents a tenant. Its public site is served on Subdomain.
type Organization struct {
	ID               snowflake.ID                   `gorm:"primaryKey" json:"id"`
	Name             string                         `gorm:"type:text;not null" json:"name"`
	Subdomain        string                         `gorm:"type:text;not null;uniqueIndex:ux_organizations_subdomain" json:"subdomain"`
	Type             OrgType                        `gorm:"type:text;not null" json:"type"`
	OwnerID          snowflake.ID                   `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Config           datatypes.JSONType[SiteConfig] `gorm:"column:config;not null" json:"config"`
	StorageUsed      int64                          `gorm:"column:storage_used;not null;default:0" json:"storage_used"`
	StorageLimit     int64                          `gorm:"column:storage_limit;not null" json:"storage_limit"`
	TimezoneName     string                         `gorm:"column:timezone_name;type:text;not null" json:"timezone_name"`
	SitePasswordHash *string                        `gorm:"column:site_password_hash;type:text" json:"-"`
	HeaderText       string                         `gorm:"column:header_text;type:text;not null;default:''" json:"header_text"`
	SubheaderText    string                         `gorm:"column:subheader_text;type:text;not null;default:''" json:"subheader_text"`
	ThemeColor       string                         `gorm:"column:theme_color;type:text;not null;default:''" json:"theme_color"`
	AlertLevel       string                         `gorm:"column:alert_level;type:text;not null;default:'none'" json:"alert_level"`
	AlertMessage     string                         `gorm:"column:alert_message;type:text;not null;default:''" json:"alert_message"`
	BrokerInfo       string                         `gorm:"column:broker_info;type:text;not null;default:''" json:"broker_info"`
	SwishNumber      string                         `gorm:"column:swish_number;type:text;not null;default:''" json:"swish_number"`
	SwishMessage     string                         `gorm:"column:swish_message;type:text;not null;default:''" json:"swish_message"`
	HeroImageURL     string                         `gorm:"column:hero_image_url;type:text;not null;default:''" json:"hero_image_url"`
	MapImageURL      string                         `gorm:"column:map_image_url;type:text;not null;default:''" json:"map_image_url"`
	CreatedAt        time.Time                      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time                      `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

func (o Organization) SiteConfig() SiteConfig { return o.Config.Data() }

func (o Organization) PasswordProtected() bool {
	return o.SitePasswordHash != nil && *o.SitePasswordHash != ""
}

// Location returns the organization's time zone, falling back to UTC when the
// stored name is unknown to the host.
func (o Organization) Location() *time.Location {
	if o.TimezoneName == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(o.TimezoneName)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Membership links an email, and once claimed a user, to an organization.
// A pending membership has no UserID.
type Membership struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_org_member_email,priority:1" json:"org_id"`
	UserID    *snowflake.ID `gorm:"index" json:"user_id,omitempty"`
	Email     string        `gorm:"type:text;not null;uniqueIndex:ux_org_member_email,priority:2" json:"email"`
	Role      string        `gorm:"type:text;not null" json:"role"`
	Status    string        `gorm:"type:text;not null" json:"status"`
	InvitedBy *snowflake.ID `gorm:"column:invited_by" json:"invited_by,omitempty"`
	CreatedAt time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "organization_members" }
