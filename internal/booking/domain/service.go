package domain

import (
	"context"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error)
	DeleteBooking(ctx context.Context, bookingID snowflake.ID, cancelToken string) error
	GetBooking(ctx context.Context, bookingID snowflake.ID) (*Booking, error)
	ListBookings(ctx context.Context, resourceID snowflake.ID, from, to time.Time) ([]Booking, error)
	ListBookingsOnDate(ctx context.Context, resourceID snowflake.ID, date string) ([]Booking, error)

	CreateResource(ctx context.Context, orgID snowflake.ID, req CreateResourceRequest) (*Resource, error)
	DeleteResource(ctx context.Context, resourceID snowflake.ID) error
	ListResources(ctx context.Context, orgID snowflake.ID) ([]Resource, error)

	ExportSchedule(ctx context.Context, resourceID snowflake.ID, fromDate, toDate string) (io.Reader, error)
}

// CreateBookingRequest carries the public booking form. Date is YYYY-MM-DD
// and times are HH:MM wall clock in the organization's time zone.
type CreateBookingRequest struct {
	ResourceID snowflake.ID `json:"resource_id"`
	Date       string       `json:"date"`
	StartTime  string       `json:"start_time"`
	EndTime    string       `json:"end_time"`
	Name       string       `json:"name"`
	Contact    string       `json:"contact"`
}

type CreateBookingResult struct {
	Booking     Booking `json:"booking"`
	CancelToken string  `json:"cancel_token"`
}

type CreateResourceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
