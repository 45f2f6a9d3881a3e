package repository

import (
	"context"
	"errors"

	"github.com/andreasgmg/fornet/pkg/db/option"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ErrNotFound is returned by Get when no row has the requested id.
var ErrNotFound = errors.New("record_not_found")

// Repository is a table-agnostic store for simple org-owned records.
type Repository[T any] interface {
	WithTx(tx *gorm.DB) Repository[T]
	Get(ctx context.Context, id snowflake.ID) (*T, error)
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	// Update returns ErrNotFound when no row matches the id and the extra
	// conditions in opts.
	Update(ctx context.Context, id snowflake.ID, fields map[string]any, opts ...option.QueryOption) error
	Delete(ctx context.Context, id snowflake.ID) error
	DeleteWhere(ctx context.Context, query *T) (int64, error)
	Count(ctx context.Context, query *T) (int64, error)
}
