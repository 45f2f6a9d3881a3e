package repository

import (
	"context"
	"errors"

	"github.com/andreasgmg/fornet/internal/booking/domain"
	"github.com/andreasgmg/fornet/pkg/db"
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

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateResource(ctx context.Context, resource *domain.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *repository) GetResource(ctx context.Context, id snowflake.ID) (*domain.Resource, error) {
	var resource domain.Resource
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&resource).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *repository) ListResources(ctx context.Context, orgID snowflake.ID) ([]domain.Resource, error) {
	var items []domain.Resource
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("name ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) DeleteResource(ctx context.Context, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Resource{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func (r *repository) LockResource(ctx context.Context, id snowflake.ID) error {
	query := r.db.WithContext(ctx).Model(&domain.Resource{}).Where("id = ?", id)
	if db.IsPostgres(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var ids []snowflake.ID
	if err := query.Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func (r *repository) HasOverlap(ctx context.Context, resourceID snowflake.ID, slot domain.Interval) (bool, error) {
	var count int64
	err := r.overlapping(ctx, resourceID, slot).Model(&domain.Booking{}).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetBooking(ctx context.Context, id snowflake.ID) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) ListOverlapping(ctx context.Context, resourceID snowflake.ID, window domain.Interval) ([]domain.Booking, error) {
	var items []domain.Booking
	err := r.overlapping(ctx, resourceID, window).
		Order("start_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) DeleteBooking(ctx context.Context, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Booking{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *repository) DeleteBookingsForResource(ctx context.Context, resourceID snowflake.ID) error {
	return r.db.WithContext(ctx).Where("resource_id = ?", resourceID).Delete(&domain.Booking{}).Error
}

// overlapping selects bookings intersecting the half-open window.
func (r *repository) overlapping(ctx context.Context, resourceID snowflake.ID, window domain.Interval) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Where("start_at < ?", window.End.UTC()).
		Where("end_at > ?", window.Start.UTC())
}
