package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateResource(ctx context.Context, resource *Resource) error
	GetResource(ctx context.Context, id snowflake.ID) (*Resource, error)
	ListResources(ctx context.Context, orgID snowflake.ID) ([]Resource, error)
	DeleteResource(ctx context.Context, id snowflake.ID) error

	// LockResource takes a row lock on the resource for the rest of the
	// transaction where the dialect supports it.
	LockResource(ctx context.Context, id snowflake.ID) error
	HasOverlap(ctx context.Context, resourceID snowflake.ID, slot Interval) (bool, error)
	CreateBooking(ctx context.Context, booking *Booking) error
	GetBooking(ctx context.Context, id snowflake.ID) (*Booking, error)
	ListOverlapping(ctx context.Context, resourceID snowflake.ID, window Interval) ([]Booking, error)
	DeleteBooking(ctx context.Context, id snowflake.ID) error
	DeleteBookingsForResource(ctx context.Context, resourceID snowflake.ID) error
}

// Locker serializes booking decisions per key across the processes sharing it.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
	Name() string
}
