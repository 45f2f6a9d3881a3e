package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/booking/domain"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/observability/metrics"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/andreasgmg/fornet/internal/providers/pdf"
	"github.com/andreasgmg/fornet/internal/ratelimit"
	"github.com/andreasgmg/fornet/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dateLayout     = "2006-01-02"
	slotLayout     = "2006-01-02 15:04"
	maxExportRange = 92 * 24 * time.Hour
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Orgs    orgdomain.Repository
	Guard   authorization.Guard
	Locker  domain.Locker
	GenID   *snowflake.Node
	Clock   clock.Clock
	PDF     pdf.Provider            `optional:"true"`
	Metrics *metrics.BookingMetrics `optional:"true"`
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	orgs    orgdomain.Repository
	guard   authorization.Guard
	locker  domain.Locker
	genID   *snowflake.Node
	clock   clock.Clock
	pdf     pdf.Provider
	metrics *metrics.BookingMetrics
}

func NewService(p Params) domain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("booking.service"),
		repo:    p.Repo,
		orgs:    p.Orgs,
		guard:   p.Guard,
		locker:  p.Locker,
		genID:   p.GenID,
		clock:   p.Clock,
		pdf:     p.PDF,
		metrics: p.Metrics,
	}
}

func (s *service) CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (*domain.CreateBookingResult, error) {
	name := strings.TrimSpace(req.Name)
	contact := strings.TrimSpace(req.Contact)
	if req.ResourceID == 0 || strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.StartTime) == "" ||
		strings.TrimSpace(req.EndTime) == "" || name == "" || contact == "" {
		s.metrics.RecordDecision(metrics.BookingOutcomeValidation)
		return nil, domain.ErrMissingFields
	}

	// Wall-clock values are validated before the resource is looked up and
	// only bound to the organization's zone afterwards.
	wallStart, err := parseWallClock(req.Date, req.StartTime)
	if err != nil {
		s.metrics.RecordDecision(metrics.BookingOutcomeValidation)
		return nil, err
	}
	wallEnd, err := parseWallClock(req.Date, req.EndTime)
	if err != nil {
		s.metrics.RecordDecision(metrics.BookingOutcomeValidation)
		return nil, err
	}
	if !wallEnd.After(wallStart) {
		s.metrics.RecordDecision(metrics.BookingOutcomeValidation)
		return nil, domain.ErrEndBeforeStart
	}

	resource, err := s.repo.GetResource(ctx, req.ResourceID)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}
	org, err := s.orgs.GetByID(ctx, resource.OrgID)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	slot := domain.Interval{
		Start: inLocation(wallStart, org.Location()),
		End:   inLocation(wallEnd, org.Location()),
	}
	if !slot.Valid() {
		s.metrics.RecordDecision(metrics.BookingOutcomeValidation)
		return nil, domain.ErrEndBeforeStart
	}

	token, tokenHash, err := newCancelToken()
	if err != nil {
		s.metrics.RecordDecision(metrics.BookingOutcomeError)
		return nil, err
	}

	booking := domain.Booking{
		ID:              s.genID.Generate(),
		ResourceID:      resource.ID,
		OrgID:           resource.OrgID,
		StartAt:         slot.Start,
		EndAt:           slot.End,
		UserName:        fmt.Sprintf("%s (%s)", name, contact),
		CancelTokenHash: tokenHash,
		CreatedAt:       s.clock.Now(),
	}

	waitStart := time.Now()
	unlock, err := s.locker.Lock(ctx, lockKey(resource.ID))
	s.metrics.ObserveLockWait(s.locker.Name(), time.Since(waitStart))
	if err != nil {
		s.metrics.RecordDecision(metrics.BookingOutcomeLockFailed)
		if errors.Is(err, ratelimit.ErrLockNotAcquired) {
			s.log.Warn("booking lock not acquired", zap.String("resource_id", resource.ID.String()))
			return nil, domain.ErrBusy
		}
		return nil, err
	}
	defer unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.LockResource(ctx, resource.ID); err != nil {
			return err
		}
		taken, err := repo.HasOverlap(ctx, resource.ID, slot)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrSlotTaken
		}
		return repo.CreateBooking(ctx, &booking)
	})
	if err != nil {
		switch {
		case db.IsExclusionViolation(err):
			err = domain.ErrSlotTaken
		case db.IsSerializationFailure(err), db.IsLockTimeout(err):
			err = domain.ErrBusy
		}
		s.recordFailure(err)
		if !errors.Is(err, domain.ErrSlotTaken) {
			s.log.Error("failed to create booking", zap.String("resource_id", resource.ID.String()), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.RecordDecision(metrics.BookingOutcomeAdmitted)
	s.log.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("resource_id", resource.ID.String()),
		zap.Time("start_at", booking.StartAt),
		zap.Time("end_at", booking.EndAt),
	)

	return &domain.CreateBookingResult{Booking: booking, CancelToken: token}, nil
}

// GetBooking does no authorization. Callers scope the result to an
// organization they have already checked.
func (s *service) GetBooking(ctx context.Context, bookingID snowflake.ID) (*domain.Booking, error) {
	return s.repo.GetBooking(ctx, bookingID)
}

func (s *service) DeleteBooking(ctx context.Context, bookingID snowflake.ID, cancelToken string) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if !tokenMatches(cancelToken, booking.CancelTokenHash) {
		if _, err := s.guard.RequireOrgAdmin(ctx, booking.OrgID); err != nil {
			return err
		}
	}

	if err := s.repo.DeleteBooking(ctx, booking.ID); err != nil {
		return err
	}
	s.log.Info("booking cancelled", zap.String("booking_id", booking.ID.String()))
	return nil
}

func (s *service) ListBookings(ctx context.Context, resourceID snowflake.ID, from, to time.Time) ([]domain.Booking, error) {
	window := domain.Interval{Start: from.UTC(), End: to.UTC()}
	if !window.Valid() {
		return nil, domain.ErrInvalidRange
	}
	if _, err := s.repo.GetResource(ctx, resourceID); err != nil {
		return nil, err
	}
	return s.repo.ListOverlapping(ctx, resourceID, window)
}

// ListBookingsOnDate lists the bookings of one local calendar day.
func (s *service) ListBookingsOnDate(ctx context.Context, resourceID snowflake.ID, date string) ([]domain.Booking, error) {
	resource, err := s.repo.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	org, err := s.orgs.GetByID(ctx, resource.OrgID)
	if err != nil {
		return nil, err
	}
	window, err := dayRange(date, date, org.Location())
	if err != nil {
		return nil, err
	}
	return s.repo.ListOverlapping(ctx, resource.ID, window)
}

func (s *service) CreateResource(ctx context.Context, orgID snowflake.ID, req domain.CreateResourceRequest) (*domain.Resource, error) {
	if _, err := s.guard.RequireOrgAdmin(ctx, orgID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidResourceName
	}

	resource := &domain.Resource{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Type:        domain.ResourceTypeHourly,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateResource(ctx, resource); err != nil {
		return nil, err
	}
	return resource, nil
}

func (s *service) DeleteResource(ctx context.Context, resourceID snowflake.ID) error {
	resource, err := s.repo.GetResource(ctx, resourceID)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, resource.OrgID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteBookingsForResource(ctx, resource.ID); err != nil {
			return err
		}
		return repo.DeleteResource(ctx, resource.ID)
	})
}

func (s *service) ListResources(ctx context.Context, orgID snowflake.ID) ([]domain.Resource, error) {
	return s.repo.ListResources(ctx, orgID)
}

// ExportSchedule renders the bookings between two local dates, both inclusive.
func (s *service) ExportSchedule(ctx context.Context, resourceID snowflake.ID, fromDate, toDate string) (io.Reader, error) {
	if s.pdf == nil {
		return nil, errors.New("pdf provider not configured")
	}

	resource, err := s.repo.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, resource.OrgID); err != nil {
		return nil, err
	}
	org, err := s.orgs.GetByID(ctx, resource.OrgID)
	if err != nil {
		return nil, err
	}

	loc := org.Location()
	window, err := dayRange(fromDate, toDate, loc)
	if err != nil {
		return nil, err
	}
	if window.End.Sub(window.Start) > maxExportRange {
		return nil, domain.ErrInvalidRange
	}

	bookings, err := s.repo.ListOverlapping(ctx, resource.ID, window)
	if err != nil {
		return nil, err
	}

	rows := make([]pdf.ScheduleRow, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, pdf.ScheduleRow{
			Start:    b.StartAt.In(loc),
			End:      b.EndAt.In(loc),
			UserName: b.UserName,
		})
	}

	return s.pdf.GenerateBookingSchedule(ctx, pdf.ScheduleData{
		OrgName:      org.Name,
		ResourceName: resource.Name,
		From:         window.Start.In(loc),
		To:           window.End.Add(-time.Nanosecond).In(loc),
		GeneratedAt:  s.clock.Now().In(loc),
		Rows:         rows,
	})
}

func (s *service) recordFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrSlotTaken):
		s.metrics.RecordDecision(metrics.BookingOutcomeConflict)
	case errors.Is(err, domain.ErrResourceNotFound), errors.Is(err, orgdomain.ErrNotFound):
		s.metrics.RecordDecision(metrics.BookingOutcomeValidation)
	case errors.Is(err, domain.ErrBusy):
		s.metrics.RecordDecision(metrics.BookingOutcomeLockFailed)
	default:
		s.metrics.RecordDecision(metrics.BookingOutcomeError)
	}
}

func lockKey(resourceID snowflake.ID) string {
	return "fornet:booking:resource:" + resourceID.String()
}

// parseWallClock reads date and HH:MM as a zone-less wall clock value.
func parseWallClock(date, hhmm string) (time.Time, error) {
	t, err := time.Parse(slotLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(hhmm))
	if err != nil {
		return time.Time{}, domain.ErrInvalidTime
	}
	return t, nil
}

// inLocation binds a wall clock value to loc and returns the UTC instant,
// truncated to the minute.
func inLocation(wall time.Time, loc *time.Location) time.Time {
	return time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), 0, 0, loc).
		UTC().Truncate(time.Minute)
}

func dayRange(fromDate, toDate string, loc *time.Location) (domain.Interval, error) {
	from, err := time.ParseInLocation(dateLayout, strings.TrimSpace(fromDate), loc)
	if err != nil {
		return domain.Interval{}, domain.ErrInvalidTime
	}
	to, err := time.ParseInLocation(dateLayout, strings.TrimSpace(toDate), loc)
	if err != nil {
		return domain.Interval{}, domain.ErrInvalidTime
	}
	window := domain.Interval{Start: from.UTC(), End: to.AddDate(0, 0, 1).UTC()}
	if !window.Valid() {
		return domain.Interval{}, domain.ErrInvalidRange
	}
	return window, nil
}

// newCancelToken returns a token for the booker and the hash kept in storage.
func newCancelToken() (token, hash string, err error) {
	secret := make([]byte, 24)
	if _, err := rand.Read(secret); err != nil {
		return "", "", err
	}
	token = ulid.Make().String() + "." + base64.RawURLEncoding.EncodeToString(secret)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func tokenMatches(token, hash string) bool {
	token = strings.TrimSpace(token)
	if token == "" || hash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hashToken(token)), []byte(hash)) == 1
}
