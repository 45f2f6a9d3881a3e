package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andreasgmg/fornet/internal/authorization"
	authmock "github.com/andreasgmg/fornet/internal/authorization/mock"
	"github.com/andreasgmg/fornet/internal/booking/domain"
	"github.com/andreasgmg/fornet/internal/booking/locker"
	"github.com/andreasgmg/fornet/internal/booking/repository"
	"github.com/andreasgmg/fornet/internal/clock"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	orgrepository "github.com/andreasgmg/fornet/internal/organization/repository"
	"github.com/andreasgmg/fornet/internal/providers/pdf"
	"github.com/andreasgmg/fornet/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPDF struct {
	data pdf.ScheduleData
}

func (r *recordingPDF) GenerateBookingSchedule(_ context.Context, data pdf.ScheduleData) (io.Reader, error) {
	r.data = data
	return strings.NewReader("%PDF-1.3"), nil
}

type fixture struct {
	svc      domain.Service
	repo     domain.Repository
	guard    *authmock.MockGuard
	pdf      *recordingPDF
	org      *orgdomain.Organization
	resource *domain.Resource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&orgdomain.Organization{}, &domain.Resource{}, &domain.Booking{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 5, 20, 6, 0, 0, 0, time.UTC))
	ctrl := gomock.NewController(t)
	guard := authmock.NewMockGuard(ctrl)

	orgs := orgrepository.NewRepository(conn)
	org := &orgdomain.Organization{
		ID:           node.Generate(),
		Name:         "BRF Lärkan",
		Subdomain:    "larkan",
		Type:         orgdomain.TypeBRF,
		OwnerID:      node.Generate(),
		StorageLimit: 1 << 20,
		TimezoneName: "Europe/Stockholm",
		CreatedAt:    clk.Now(),
		UpdatedAt:    clk.Now(),
	}
	require.NoError(t, orgs.CreateOrganization(context.Background(), org))

	repo := repository.NewRepository(conn)
	resource := &domain.Resource{
		ID:        node.Generate(),
		OrgID:     org.ID,
		Name:      "Tvättstuga",
		Type:      domain.ResourceTypeHourly,
		CreatedAt: clk.Now(),
	}
	require.NoError(t, repo.CreateResource(context.Background(), resource))

	rec := &recordingPDF{}
	svc := NewService(Params{
		DB:     conn,
		Log:    zap.NewNop(),
		Repo:   repo,
		Orgs:   orgs,
		Guard:  guard,
		Locker: locker.NewLocal(5 * time.Second),
		GenID:  node,
		Clock:  clk,
		PDF:    rec,
	})

	return &fixture{svc: svc, repo: repo, guard: guard, pdf: rec, org: org, resource: resource}
}

func (f *fixture) book(start, end string) (*domain.CreateBookingResult, error) {
	return f.svc.CreateBooking(context.Background(), domain.CreateBookingRequest{
		ResourceID: f.resource.ID,
		Date:       "2024-05-20",
		StartTime:  start,
		EndTime:    end,
		Name:       "Anna",
		Contact:    "070-123 45 67",
	})
}

func TestCreateBookingLaundryScenario(t *testing.T) {
	f := newFixture(t)

	_, err := f.book("10:00", "12:00")
	require.NoError(t, err)

	_, err = f.book("11:00", "13:00")
	assert.ErrorIs(t, err, domain.ErrSlotTaken)

	_, err = f.book("12:00", "14:00")
	assert.NoError(t, err, "touching the end of a booking is allowed")

	_, err = f.book("08:00", "10:00")
	assert.NoError(t, err, "touching the start of a booking is allowed")

	_, err = f.book("09:30", "14:30")
	assert.ErrorIs(t, err, domain.ErrSlotTaken)
}

func TestCreateBookingStoresUTCAndUserName(t *testing.T) {
	f := newFixture(t)

	res, err := f.book("10:00", "12:00")
	require.NoError(t, err)

	// Stockholm is UTC+2 in May.
	assert.Equal(t, time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC), res.Booking.StartAt)
	assert.Equal(t, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC), res.Booking.EndAt)
	assert.Equal(t, "Anna (070-123 45 67)", res.Booking.UserName)
	assert.Equal(t, f.org.ID, res.Booking.OrgID)
	assert.NotEmpty(t, res.CancelToken)

	stored, err := f.repo.GetBooking(context.Background(), res.Booking.ID)
	require.NoError(t, err)
	assert.NotEqual(t, res.CancelToken, stored.CancelTokenHash)
	assert.Len(t, stored.CancelTokenHash, 64)
}

func TestCreateBookingValidationOrder(t *testing.T) {
	f := newFixture(t)
	unknown := snowflake.ID(42)

	cases := []struct {
		name string
		req  domain.CreateBookingRequest
		want error
	}{
		{
			name: "missing contact on unknown resource",
			req:  domain.CreateBookingRequest{ResourceID: unknown, Date: "2024-05-20", StartTime: "10:00", EndTime: "11:00", Name: "Anna"},
			want: domain.ErrMissingFields,
		},
		{
			name: "missing resource",
			req:  domain.CreateBookingRequest{Date: "2024-05-20", StartTime: "10:00", EndTime: "11:00", Name: "Anna", Contact: "x"},
			want: domain.ErrMissingFields,
		},
		{
			name: "blank name",
			req:  domain.CreateBookingRequest{ResourceID: f.resource.ID, Date: "2024-05-20", StartTime: "10:00", EndTime: "11:00", Name: "  ", Contact: "x"},
			want: domain.ErrMissingFields,
		},
		{
			name: "unparseable time",
			req:  domain.CreateBookingRequest{ResourceID: unknown, Date: "2024-05-20", StartTime: "tio", EndTime: "11:00", Name: "Anna", Contact: "x"},
			want: domain.ErrInvalidTime,
		},
		{
			name: "unparseable date",
			req:  domain.CreateBookingRequest{ResourceID: f.resource.ID, Date: "20/05/2024", StartTime: "10:00", EndTime: "11:00", Name: "Anna", Contact: "x"},
			want: domain.ErrInvalidTime,
		},
		{
			name: "end before start on unknown resource",
			req:  domain.CreateBookingRequest{ResourceID: unknown, Date: "2024-05-20", StartTime: "12:00", EndTime: "10:00", Name: "Anna", Contact: "x"},
			want: domain.ErrEndBeforeStart,
		},
		{
			name: "empty interval",
			req:  domain.CreateBookingRequest{ResourceID: f.resource.ID, Date: "2024-05-20", StartTime: "10:00", EndTime: "10:00", Name: "Anna", Contact: "x"},
			want: domain.ErrEndBeforeStart,
		},
		{
			name: "unknown resource",
			req:  domain.CreateBookingRequest{ResourceID: unknown, Date: "2024-05-20", StartTime: "10:00", EndTime: "11:00", Name: "Anna", Contact: "x"},
			want: domain.ErrResourceNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateBookingConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.book("18:00", "20:00")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrSlotTaken):
				conflicts++
			default:
				others = append(others, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)

	bookings, err := f.svc.ListBookingsOnDate(context.Background(), f.resource.ID, "2024-05-20")
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestDeleteBookingWithCancelToken(t *testing.T) {
	f := newFixture(t)

	res, err := f.book("10:00", "12:00")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteBooking(context.Background(), res.Booking.ID, res.CancelToken))

	_, err = f.repo.GetBooking(context.Background(), res.Booking.ID)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	_, err = f.book("10:00", "12:00")
	assert.NoError(t, err, "slot is free after cancellation")
}

func TestDeleteBookingWithoutTokenRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	res, err := f.book("10:00", "12:00")
	require.NoError(t, err)

	f.guard.EXPECT().
		RequireOrgAdmin(gomock.Any(), f.org.ID).
		Return(authorization.Identity{}, authorization.ErrUnauthenticated)
	err = f.svc.DeleteBooking(context.Background(), res.Booking.ID, "")
	assert.ErrorIs(t, err, authorization.ErrUnauthenticated)

	f.guard.EXPECT().
		RequireOrgAdmin(gomock.Any(), f.org.ID).
		Return(authorization.Identity{}, authorization.ErrForbidden)
	err = f.svc.DeleteBooking(context.Background(), res.Booking.ID, "not-the-token")
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	f.guard.EXPECT().
		RequireOrgAdmin(gomock.Any(), f.org.ID).
		Return(authorization.Identity{UserID: 7, Role: authorization.RoleAdmin}, nil)
	require.NoError(t, f.svc.DeleteBooking(context.Background(), res.Booking.ID, ""))
}

func TestDeleteBookingNotFound(t *testing.T) {
	f := newFixture(t)

	err := f.svc.DeleteBooking(context.Background(), snowflake.ID(99), "token")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestListBookingsOrderedWithinWindow(t *testing.T) {
	f := newFixture(t)

	for _, slot := range [][2]string{{"14:00", "15:00"}, {"08:00", "09:00"}, {"11:00", "12:00"}} {
		_, err := f.book(slot[0], slot[1])
		require.NoError(t, err)
	}

	from := time.Date(2024, 5, 20, 8, 30, 0, 0, time.UTC)
	to := time.Date(2024, 5, 20, 12, 30, 0, 0, time.UTC)
	bookings, err := f.svc.ListBookings(context.Background(), f.resource.ID, from, to)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.True(t, bookings[0].StartAt.Before(bookings[1].StartAt))
	assert.Equal(t, time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC), bookings[0].StartAt)

	_, err = f.svc.ListBookings(context.Background(), f.resource.ID, to, from)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = f.svc.ListBookings(context.Background(), snowflake.ID(5), from, to)
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestResourceManagementRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.guard.EXPECT().
		RequireOrgAdmin(gomock.Any(), f.org.ID).
		Return(authorization.Identity{}, authorization.ErrForbidden)
	_, err := f.svc.CreateResource(ctx, f.org.ID, domain.CreateResourceRequest{Name: "Bastu"})
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	f.guard.EXPECT().
		RequireOrgAdmin(gomock.Any(), f.org.ID).
		Return(authorization.Identity{UserID: 1, Role: authorization.RoleOwner}, nil)
	_, err = f.svc.CreateResource(ctx, f.org.ID, domain.CreateResourceRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidResourceName)

	f.guard.EXPECT().
		RequireOrgAdmin(gomock.Any(), f.org.ID).
		Return(authorization.Identity{UserID: 1, Role: authorization.RoleOwner}, nil)
	sauna, err := f.svc.CreateResource(ctx, f.org.ID, domain.CreateResourceRequest{Name: "Bastu", Description: "Plan 1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ResourceTypeHourly, sauna.Type)

	resources, err := f.svc.ListResources(ctx, f.org.ID)
	require.NoError(t, err)
	assert.Len(t, resources, 2)
}

func TestDeleteResourceCascadesBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.book("10:00", "12:00")
	require.NoError(t, err)

	f.guard.EXPECT().
		RequireOrgAdmin(gomock.Any(), f.org.ID).
		Return(authorization.Identity{UserID: 1, Role: authorization.RoleAdmin}, nil)
	require.NoError(t, f.svc.DeleteResource(ctx, f.resource.ID))

	_, err = f.repo.GetResource(ctx, f.resource.ID)
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
	_, err = f.repo.GetBooking(ctx, res.Booking.ID)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestExportScheduleUsesLocalTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book("10:00", "12:00")
	require.NoError(t, err)

	f.guard.EXPECT().
		RequireOrgAdmin(gomock.Any(), f.org.ID).
		Return(authorization.Identity{UserID: 1, Role: authorization.RoleAdmin}, nil)
	r, err := f.svc.ExportSchedule(ctx, f.resource.ID, "2024-05-20", "2024-05-26")
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))

	require.Len(t, f.pdf.data.Rows, 1)
	assert.Equal(t, 10, f.pdf.data.Rows[0].Start.Hour())
	assert.Equal(t, "Tvättstuga", f.pdf.data.ResourceName)
	assert.Equal(t, "BRF Lärkan", f.pdf.data.OrgName)

	f.guard.EXPECT().
		RequireOrgAdmin(gomock.Any(), f.org.ID).
		Return(authorization.Identity{UserID: 1, Role: authorization.RoleAdmin}, nil)
	_, err = f.svc.ExportSchedule(ctx, f.resource.ID, "2024-05-26", "2024-05-20")
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}
