package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateOrganizationRequest) (*Organization, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Organization, error)
	ListForUser(ctx context.Context) ([]OrganizationListResponseItem, error)
	Delete(ctx context.Context, subdomain string) error

	UpdateModule(ctx context.Context, subdomain string, key string, enabled bool) (*Organization, error)
	UpdateSettings(ctx context.Context, subdomain string, req UpdateSettingsRequest) (*Organization, error)
	UpdateSnowStatus(ctx context.Context, subdomain string, status string) (*Organization, error)
	SetSitePassword(ctx context.Context, subdomain string, password string) error
	CheckSitePassword(ctx context.Context, subdomain string, attempt string) (*Organization, error)

	CheckQuota(ctx context.Context, orgID snowflake.ID, size int64) error
	AddUsage(ctx context.Context, orgID snowflake.ID, delta int64) error

	InviteMember(ctx context.Context, orgID snowflake.ID, req InviteRequest) (*Membership, error)
	RemoveMember(ctx context.Context, membershipID snowflake.ID) error
	ListMembers(ctx context.Context, orgID snowflake.ID) ([]Membership, error)
	CountActiveMembers(ctx context.Context, orgID snowflake.ID) (int64, error)
	ClaimInvites(ctx context.Context, userID snowflake.ID, email string) (int64, error)
}

type CreateOrganizationRequest struct {
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
	Type      string `json:"type"`
}

type UpdateSettingsRequest struct {
	Name          *string      `json:"name"`
	HeaderText    *string      `json:"header_text"`
	SubheaderText *string      `json:"subheader_text"`
	ThemeColor    *string      `json:"theme_color"`
	AlertLevel    *string      `json:"alert_level"`
	AlertMessage  *string      `json:"alert_message"`
	BrokerInfo    *string      `json:"broker_info"`
	SwishNumber   *string      `json:"swish_number"`
	SwishMessage  *string      `json:"swish_message"`
	HeroImageURL  *string      `json:"hero_image_url"`
	MapImageURL   *string      `json:"map_image_url"`
	Config        *ConfigPatch `json:"config"`
}

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type OrganizationListResponseItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	Type      OrgType   `json:"type"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertLevels are the accepted values of Organization.AlertLevel.
var AlertLevels = []string{"none", "info", "warning", "critical"}
