package server

import (
	"net/http"
	"strings"

	auditdomain "github.com/andreasgmg/fornet/internal/audit/domain"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func (s *Server) ListSubmissions(c *gin.Context) {
	submissions, err := s.formSvc.List(c.Request.Context(), orgFromContext(c).ID, strings.TrimSpace(c.Query("type")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

func (s *Server) ApproveApplication(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.formSvc.ApproveMembershipApplication(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, orgFromContext(c), auditdomain.ActionApplicationApproved, "form_submission", id, nil)

	c.Status(http.StatusNoContent)
}

func (s *Server) RejectApplication(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.formSvc.RejectMembershipApplication(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, orgFromContext(c), auditdomain.ActionApplicationRejected, "form_submission", id, nil)

	c.Status(http.StatusNoContent)
}

// SubmitForm accepts the public contact, report and membership forms as JSON
// or as a classic form post.
func (s *Server) SubmitForm(c *gin.Context) {
	data, err := formFields(c)
	if err != nil {
		respondSiteError(c, ErrInvalidRequest)
		return
	}

	if _, err := s.formSvc.Submit(c.Request.Context(), siteFromContext(c).ID, c.Param("type"), data); err != nil {
		respondSiteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

func formFields(c *gin.Context) (map[string]any, error) {
	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(1 << 20); err != nil && c.ContentType() == binding.MIMEMultipartPOSTForm {
			return nil, err
		}
		data := make(map[string]any, len(c.Request.PostForm))
		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				data[key] = values[0]
			}
		}
		return data, nil
	default:
		data := map[string]any{}
		if err := c.ShouldBindJSON(&data); err != nil {
			return nil, err
		}
		return data, nil
	}
}
