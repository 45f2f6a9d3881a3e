package server

import (
	"net/http"
	"strings"
	"time"

	bookingdomain "github.com/andreasgmg/fornet/internal/booking/domain"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/andreasgmg/fornet/internal/siteaccess"
	"github.com/andreasgmg/fornet/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

const (
	homePosts  = 3
	homeEvents = 5
)

// siteView is the public face of an organization. Storage, owner and
// password fields stay private.
type siteView struct {
	Name          string               `json:"name"`
	Subdomain     string               `json:"subdomain"`
	Type          orgdomain.OrgType    `json:"type"`
	Config        orgdomain.SiteConfig `json:"config"`
	HeaderText    string               `json:"header_text"`
	SubheaderText string               `json:"subheader_text"`
	ThemeColor    string               `json:"theme_color"`
	AlertLevel    string               `json:"alert_level"`
	AlertMessage  string               `json:"alert_message,omitempty"`
	SwishNumber   string               `json:"swish_number,omitempty"`
	SwishMessage  string               `json:"swish_message,omitempty"`
	HeroImageURL  string               `json:"hero_image_url,omitempty"`
	MapImageURL   string               `json:"map_image_url,omitempty"`
	Timezone      string               `json:"timezone"`
}

func newSiteView(org *orgdomain.Organization) siteView {
	return siteView{
		Name:          org.Name,
		Subdomain:     org.Subdomain,
		Type:          org.Type,
		Config:        org.SiteConfig(),
		HeaderText:    org.HeaderText,
		SubheaderText: org.SubheaderText,
		ThemeColor:    org.ThemeColor,
		AlertLevel:    org.AlertLevel,
		AlertMessage:  org.AlertMessage,
		SwishNumber:   org.SwishNumber,
		SwishMessage:  org.SwishMessage,
		HeroImageURL:  org.HeroImageURL,
		MapImageURL:   org.MapImageURL,
		Timezone:      org.Location().String(),
	}
}

func (s *Server) SiteHome(c *gin.Context) {
	ctx := c.Request.Context()
	org := siteFromContext(c)
	cfg := org.SiteConfig()

	body := gin.H{"site": newSiteView(org)}

	if cfg.ShowNews {
		posts, err := s.contentSvc.ListPosts(ctx, org.ID, pagination.Pagination{PageSize: homePosts})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		body["posts"] = posts.Posts
	}

	if cfg.ShowCalendarWidget {
		events, err := s.contentSvc.ListUpcomingEvents(ctx, org.ID, s.clock.Now())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if len(events) > homeEvents {
			events = events[:homeEvents]
		}
		body["events"] = events
	}

	sponsors, err := s.contentSvc.ListSponsors(ctx, org.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	body["sponsors"] = sponsors

	pages, err := s.contentSvc.ListPages(ctx, org.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	body["pages"] = pages

	c.JSON(http.StatusOK, body)
}

func (s *Server) SitePosts(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	resp, err := s.contentSvc.ListPosts(c.Request.Context(), siteFromContext(c).ID, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) SitePost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	post, err := s.contentSvc.GetPost(c.Request.Context(), siteFromContext(c).ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (s *Server) SitePage(c *gin.Context) {
	page, err := s.contentSvc.GetPageBySlug(c.Request.Context(), siteFromContext(c).ID, c.Param("slug"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

func (s *Server) SiteEvents(c *gin.Context) {
	events, err := s.contentSvc.ListUpcomingEvents(c.Request.Context(), siteFromContext(c).ID, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (s *Server) SiteDocuments(c *gin.Context) {
	docs, err := s.documentSvc.List(c.Request.Context(), siteFromContext(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (s *Server) SiteBoard(c *gin.Context) {
	members, err := s.contentSvc.ListBoardMembers(c.Request.Context(), siteFromContext(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"board": members})
}

type siteResourceView struct {
	Resource bookingdomain.Resource `json:"resource"`
	Bookings []bookingView          `json:"bookings"`
}

// SiteBooking lists the bookable resources with their bookings on ?date=,
// which defaults to today in the organization's time zone.
func (s *Server) SiteBooking(c *gin.Context) {
	ctx := c.Request.Context()
	org := siteFromContext(c)
	loc := org.Location()
	date := c.DefaultQuery("date", s.clock.Now().In(loc).Format(dateOnlyLayout))

	resources, err := s.bookingSvc.ListResources(ctx, org.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out := make([]siteResourceView, 0, len(resources))
	for _, resource := range resources {
		bookings, err := s.bookingSvc.ListBookingsOnDate(ctx, resource.ID, date)
		if err != nil {
			respondSiteError(c, err)
			return
		}
		out = append(out, siteResourceView{Resource: resource, Bookings: publicBookings(bookings, loc)})
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "resources": out})
}

func (s *Server) SiteBrokerInfo(c *gin.Context) {
	org := siteFromContext(c)
	c.JSON(http.StatusOK, gin.H{"broker_info": org.BrokerInfo})
}

type verifySitePasswordRequest struct {
	Password string `json:"password" form:"password"`
}

func (s *Server) VerifySitePassword(c *gin.Context) {
	org := siteFromContext(c)

	var req verifySitePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		respondSiteError(c, ErrInvalidRequest)
		return
	}

	grant, err := s.siteAccess.Verify(c.Request.Context(), org.Subdomain, req.Password)
	if err != nil {
		respondSiteError(c, err)
		return
	}

	maxAge := int(grant.ExpiresAt.Sub(s.clock.Now()) / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(siteaccess.CookieName(org.Subdomain), grant.Token, maxAge, "/", "", s.cfg.AuthCookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) SearchSite(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"results": []any{}})
		return
	}

	results, err := s.contentSvc.Search(c.Request.Context(), siteFromContext(c).ID, query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
