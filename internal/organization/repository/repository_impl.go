package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

// NewMembershipReader exposes membership roles to the authorization guard.
func NewMembershipReader(repo domain.Repository) authorization.MembershipReader {
	return repo
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateOrganization(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *repository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Organization, error) {
	return r.getOne(ctx, "subdomain = ?", strings.ToLower(strings.TrimSpace(subdomain)))
}

func (r *repository) getOne(ctx context.Context, query string, args ...any) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).Where(query, args...).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Organization{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteOrganization(ctx context.Context, id snowflake.ID) error {
	if err := r.db.WithContext(ctx).Where("org_id = ?", id).Delete(&domain.Membership{}).Error; err != nil {
		return err
	}
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Organization{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repository) ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]domain.OrganizationListItem, error) {
	var items []domain.OrganizationListItem
	err := r.db.WithContext(ctx).Raw(
		`SELECT o.id, o.name, o.subdomain, o.type, m.role, o.created_at
		 FROM organizations o
		 JOIN organization_members m ON m.org_id = o.id
		 WHERE m.user_id = ? AND m.status = ?
		 ORDER BY o.created_at ASC`,
		userID,
		domain.MembershipActive,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repository) ReserveStorage(ctx context.Context, orgID snowflake.ID, size int64) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Organization{}).
		Where("id = ? AND storage_used + ? <= storage_limit", orgID, size).
		Update("storage_used", gorm.Expr("storage_used + ?", size))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, orgID); err != nil {
		return err
	}
	return domain.ErrStorageFull
}

func (r *repository) ReleaseStorage(ctx context.Context, orgID snowflake.ID, size int64) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Organization{}).
		Where("id = ?", orgID).
		Update("storage_used", gorm.Expr("CASE WHEN storage_used - ? < 0 THEN 0 ELSE storage_used - ? END", size, size))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repository) AddMember(ctx context.Context, member *domain.Membership) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) AddInvite(ctx context.Context, member *domain.Membership) (bool, error) {
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "org_id"}, {Name: "email"}},
			DoNothing: true,
		}).
		Create(member)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *repository) GetMember(ctx context.Context, id snowflake.ID) (*domain.Membership, error) {
	var member domain.Membership
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) ListMembers(ctx context.Context, orgID snowflake.ID) ([]domain.Membership, error) {
	var members []domain.Membership
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) DeleteMember(ctx context.Context, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Membership{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (r *repository) CountActiveMembers(ctx context.Context, orgID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("org_id = ? AND status = ?", orgID, domain.MembershipActive).
		Count(&count).Error
	return count, err
}

func (r *repository) MembershipRole(ctx context.Context, orgID, userID snowflake.ID) (string, bool, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	tx := r.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM organization_members
		 WHERE org_id = ? AND user_id = ? AND status = ?
		 LIMIT 1`,
		orgID,
		userID,
		domain.MembershipActive,
	).Scan(&row)
	if tx.Error != nil {
		return "", false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return "", false, nil
	}
	return row.Role, true, nil
}

func (r *repository) ClaimInvites(ctx context.Context, userID snowflake.ID, email string, at time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("email = ? AND user_id IS NULL", strings.ToLower(strings.TrimSpace(email))).
		Updates(map[string]any{
			"user_id":    userID,
			"status":     domain.MembershipActive,
			"updated_at": at,
		})
	return tx.RowsAffected, tx.Error
}
