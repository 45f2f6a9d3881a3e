package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	auditdomain "github.com/andreasgmg/fornet/internal/audit/domain"
	bookingdomain "github.com/andreasgmg/fornet/internal/booking/domain"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const dateOnlyLayout = "2006-01-02"

// resourceOf returns the resource when it belongs to org. A resource of
// another organization is reported as missing.
func (s *Server) resourceOf(ctx context.Context, org *orgdomain.Organization, resourceID snowflake.ID) (*bookingdomain.Resource, error) {
	resources, err := s.bookingSvc.ListResources(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	for i := range resources {
		if resources[i].ID == resourceID {
			return &resources[i], nil
		}
	}
	return nil, bookingdomain.ErrResourceNotFound
}

// bookingOf hides bookings of other organizations behind not found.
func (s *Server) bookingOf(ctx context.Context, org *orgdomain.Organization, bookingID snowflake.ID) (*bookingdomain.Booking, error) {
	booking, err := s.bookingSvc.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OrgID != org.ID {
		return nil, bookingdomain.ErrBookingNotFound
	}
	return booking, nil
}

func (s *Server) ListResources(c *gin.Context) {
	resources, err := s.bookingSvc.ListResources(c.Request.Context(), orgFromContext(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

func (s *Server) CreateResource(c *gin.Context) {
	var req bookingdomain.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resource, err := s.bookingSvc.CreateResource(c.Request.Context(), orgFromContext(c).ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"resource": resource})
}

func (s *Server) DeleteResource(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := s.resourceOf(c.Request.Context(), orgFromContext(c), id); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.bookingSvc.DeleteResource(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, orgFromContext(c), auditdomain.ActionResourceDeleted, "resource", id, nil)

	c.Status(http.StatusNoContent)
}

// ListResourceBookings lists bookings between two local dates, both
// inclusive. Both default to today.
func (s *Server) ListResourceBookings(c *gin.Context) {
	org := orgFromContext(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := s.resourceOf(c.Request.Context(), org, id); err != nil {
		AbortWithError(c, err)
		return
	}

	today := s.clock.Now().In(org.Location()).Format(dateOnlyLayout)
	from, to, err := localDateWindow(c.DefaultQuery("from", today), c.DefaultQuery("to", today), org.Location())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	bookings, err := s.bookingSvc.ListBookings(c.Request.Context(), id, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (s *Server) ExportSchedule(c *gin.Context) {
	org := orgFromContext(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	resource, err := s.resourceOf(c.Request.Context(), org, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	today := s.clock.Now().In(org.Location()).Format(dateOnlyLayout)
	from := c.DefaultQuery("from", today)
	to := c.DefaultQuery("to", from)

	doc, err := s.bookingSvc.ExportSchedule(c.Request.Context(), id, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s-%s.pdf", strings.ToLower(strings.ReplaceAll(resource.Name, " ", "-")), from, to)
	c.DataFromReader(http.StatusOK, -1, "application/pdf", doc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	})
}

func (s *Server) CancelBookingAsAdmin(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	org := orgFromContext(c)
	if _, err := s.bookingOf(c.Request.Context(), org, id); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.bookingSvc.DeleteBooking(c.Request.Context(), id, ""); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, org, auditdomain.ActionBookingCancelled, "booking", id, nil)

	c.Status(http.StatusNoContent)
}

// SiteResourceBookings lists a resource's bookings on one local date for
// the public booking calendar.
func (s *Server) SiteResourceBookings(c *gin.Context) {
	org := siteFromContext(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := s.resourceOf(c.Request.Context(), org, id); err != nil {
		AbortWithError(c, err)
		return
	}

	date := c.DefaultQuery("date", s.clock.Now().In(org.Location()).Format(dateOnlyLayout))
	bookings, err := s.bookingSvc.ListBookingsOnDate(c.Request.Context(), id, date)
	if err != nil {
		respondSiteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": publicBookings(bookings, org.Location())})
}

func (s *Server) CreateBooking(c *gin.Context) {
	org := siteFromContext(c)

	var req bookingdomain.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondSiteError(c, ErrInvalidRequest)
		return
	}
	if req.ResourceID == 0 {
		respondSiteError(c, bookingdomain.ErrMissingFields)
		return
	}
	if _, err := s.resourceOf(c.Request.Context(), org, req.ResourceID); err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.bookingSvc.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondSiteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"booking":      publicBooking(result.Booking, org.Location()),
		"cancel_token": result.CancelToken,
	})
}

type cancelBookingRequest struct {
	CancelToken string `json:"cancel_token" form:"cancel_token"`
}

// CancelBooking removes a booking with the token handed out at creation.
// Signed-in admins of the site may cancel without one.
func (s *Server) CancelBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req cancelBookingRequest
	_ = c.ShouldBindQuery(&req)
	if req.CancelToken == "" && c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}

	if err := s.bookingSvc.DeleteBooking(c.Request.Context(), id, strings.TrimSpace(req.CancelToken)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type bookingView struct {
	ID       snowflake.ID `json:"id"`
	Start    time.Time    `json:"start"`
	End      time.Time    `json:"end"`
	UserName string       `json:"user_name"`
}

func publicBooking(b bookingdomain.Booking, loc *time.Location) bookingView {
	return bookingView{
		ID:       b.ID,
		Start:    b.StartAt.In(loc),
		End:      b.EndAt.In(loc),
		UserName: b.UserName,
	}
}

func publicBookings(bookings []bookingdomain.Booking, loc *time.Location) []bookingView {
	out := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, publicBooking(b, loc))
	}
	return out
}

// localDateWindow turns two inclusive local dates into a half-open UTC
// window.
func localDateWindow(fromDate, toDate string, loc *time.Location) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation(dateOnlyLayout, strings.TrimSpace(fromDate), loc)
	if err != nil {
		return time.Time{}, time.Time{}, bookingdomain.ErrInvalidTime
	}
	to, err := time.ParseInLocation(dateOnlyLayout, strings.TrimSpace(toDate), loc)
	if err != nil {
		return time.Time{}, time.Time{}, bookingdomain.ErrInvalidTime
	}
	end := to.AddDate(0, 0, 1)
	if !end.After(from) {
		return time.Time{}, time.Time{}, bookingdomain.ErrInvalidRange
	}
	return from.UTC(), end.UTC(), nil
}
