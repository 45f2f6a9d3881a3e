package pdf

import (
	"context"
	"io"
	"time"

	"go.uber.org/fx"
)

var Module = fx.Module("pdf",
	fx.Provide(New),
)

type Provider interface {
	GenerateBookingSchedule(ctx context.Context, data ScheduleData) (io.Reader, error)
}

// ScheduleData is a resource's bookings over a date range, already converted
// to the organization's local time.
type ScheduleData struct {
	OrgName      string
	ResourceName string
	From         time.Time
	To           time.Time
	GeneratedAt  time.Time
	Rows         []ScheduleRow
}

type ScheduleRow struct {
	Start    time.Time
	End      time.Time
	UserName string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}
