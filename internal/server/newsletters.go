package server

import (
	"net/http"

	auditdomain "github.com/andreasgmg/fornet/internal/audit/domain"
	newsletterdomain "github.com/andreasgmg/fornet/internal/newsletter/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListNewsletters(c *gin.Context) {
	letters, err := s.newsletterSvc.List(c.Request.Context(), orgFromContext(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"newsletters": letters})
}

// SaveNewsletter creates a draft on POST and updates one on PUT /:id.
func (s *Server) SaveNewsletter(c *gin.Context) {
	var id snowflake.ID
	if c.Param("id") != "" {
		parsed, ok := idParam(c, "id")
		if !ok {
			return
		}
		id = parsed
	}

	var req newsletterdomain.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	letter, err := s.newsletterSvc.SaveDraft(c.Request.Context(), orgFromContext(c).ID, id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if id == 0 {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"newsletter": letter})
}

func (s *Server) DeleteNewsletter(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.newsletterSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) SendNewsletter(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	recipients, err := s.newsletterSvc.MarkSent(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, orgFromContext(c), auditdomain.ActionNewsletterSent, "newsletter", id, map[string]any{"recipients": recipients})

	c.JSON(http.StatusOK, gin.H{"success": true, "recipients": recipients})
}
