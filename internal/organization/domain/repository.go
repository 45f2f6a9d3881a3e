package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type OrganizationListItem struct {
	ID        snowflake.ID
	Name      string
	Subdomain string
	Type      OrgType
	Role      string
	CreatedAt time.Time
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrganization(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Organization, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	DeleteOrganization(ctx context.Context, id snowflake.ID) error
	ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]OrganizationListItem, error)

	// ReserveStorage adds size to storage_used only if the result stays
	// within storage_limit. It returns ErrStorageFull otherwise.
	ReserveStorage(ctx context.Context, orgID snowflake.ID, size int64) error
	// ReleaseStorage subtracts size, clamping storage_used at zero.
	ReleaseStorage(ctx context.Context, orgID snowflake.ID, size int64) error

	AddMember(ctx context.Context, member *Membership) error
	// AddInvite inserts member unless its email is already on the
	// organization. It reports whether a row was added.
	AddInvite(ctx context.Context, member *Membership) (bool, error)
	GetMember(ctx context.Context, id snowflake.ID) (*Membership, error)
	ListMembers(ctx context.Context, orgID snowflake.ID) ([]Membership, error)
	DeleteMember(ctx context.Context, id snowflake.ID) error
	CountActiveMembers(ctx context.Context, orgID snowflake.ID) (int64, error)
	MembershipRole(ctx context.Context, orgID, userID snowflake.ID) (string, bool, error)
	ClaimInvites(ctx context.Context, userID snowflake.ID, email string, at time.Time) (int64, error)
}
