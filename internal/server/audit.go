package server

import (
	"net/http"

	auditdomain "github.com/andreasgmg/fornet/internal/audit/domain"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

// recordAudit appends to the organization's activity log. A failed write is
// logged and never fails the request.
func (s *Server) recordAudit(c *gin.Context, org *orgdomain.Organization, action, targetType string, targetID snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil || org == nil {
		return
	}

	entry := auditdomain.Entry{
		OrgID:      org.ID,
		Action:     action,
		TargetType: targetType,
		Metadata:   metadata,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}
	if targetID != 0 {
		entry.TargetID = targetID.String()
	}

	if err := s.auditSvc.Record(c.Request.Context(), entry); err != nil {
		s.logWarn(c, "audit record failed", err)
	}
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var req auditdomain.ListAuditLogRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), orgFromContext(c).ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
