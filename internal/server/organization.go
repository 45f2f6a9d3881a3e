package server

import (
	"net/http"
	"strings"

	auditdomain "github.com/andreasgmg/fornet/internal/audit/domain"
	"github.com/andreasgmg/fornet/internal/authorization"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListOrgs(c *gin.Context) {
	orgs, err := s.orgsvc.ListForUser(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orgs": orgs})
}

func (s *Server) CreateOrg(c *gin.Context) {
	var req orgdomain.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	org, err := s.orgsvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"org": org})
}

func (s *Server) GetOrg(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"org":  orgFromContext(c),
		"role": c.GetString("role"),
	})
}

func (s *Server) DeleteOrg(c *gin.Context) {
	org := orgFromContext(c)
	if err := s.orgsvc.Delete(c.Request.Context(), org.Subdomain); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) UpdateSettings(c *gin.Context) {
	var req orgdomain.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	org, err := s.orgsvc.UpdateSettings(c.Request.Context(), orgFromContext(c).Subdomain, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, org, auditdomain.ActionSettingsUpdated, "organization", org.ID, nil)

	c.JSON(http.StatusOK, gin.H{"org": org})
}

type updateModuleRequest struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) UpdateModule(c *gin.Context) {
	var req updateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		AbortWithError(c, newValidationError("enabled", "required", "enabled is required"))
		return
	}

	org, err := s.orgsvc.UpdateModule(c.Request.Context(), orgFromContext(c).Subdomain, c.Param("key"), *req.Enabled)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, org, auditdomain.ActionModuleToggled, "organization", org.ID, map[string]any{
		"module":  c.Param("key"),
		"enabled": *req.Enabled,
	})

	c.JSON(http.StatusOK, gin.H{"org": org})
}

type snowStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateSnowStatus(c *gin.Context) {
	var req snowStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	org, err := s.orgsvc.UpdateSnowStatus(c.Request.Context(), orgFromContext(c).Subdomain, req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, org, auditdomain.ActionSnowStatusUpdated, "organization", org.ID, map[string]any{"status": req.Status})

	c.JSON(http.StatusOK, gin.H{"org": org})
}

type sitePasswordRequest struct {
	Password string `json:"password"`
}

// SetSitePassword protects the public site. An empty password removes the
// protection.
func (s *Server) SetSitePassword(c *gin.Context) {
	var req sitePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	org := orgFromContext(c)
	if err := s.orgsvc.SetSitePassword(c.Request.Context(), org.Subdomain, req.Password); err != nil {
		AbortWithError(c, err)
		return
	}

	action := auditdomain.ActionSitePasswordSet
	if strings.TrimSpace(req.Password) == "" {
		action = auditdomain.ActionSitePasswordCleared
	}
	s.recordAudit(c, org, action, "organization", org.ID, nil)

	c.Status(http.StatusNoContent)
}

func (s *Server) ListMembers(c *gin.Context) {
	members, err := s.orgsvc.ListMembers(c.Request.Context(), orgFromContext(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (s *Server) InviteMember(c *gin.Context) {
	var req orgdomain.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	org := orgFromContext(c)
	member, err := s.orgsvc.InviteMember(c.Request.Context(), org.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, org, auditdomain.ActionMemberInvited, "member", member.ID, map[string]any{
		"email": member.Email,
		"role":  member.Role,
	})

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

func (s *Server) RemoveMember(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := s.orgsvc.RemoveMember(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	s.recordAudit(c, orgFromContext(c), auditdomain.ActionMemberRemoved, "member", id, nil)

	c.Status(http.StatusNoContent)
}

// DashboardOverview is the admin landing page for one organization. Members
// see the public-facing lists; admins also get members, submissions and
// newsletters.
func (s *Server) DashboardOverview(c *gin.Context) {
	ctx := c.Request.Context()
	org := orgFromContext(c)
	role := c.GetString("role")

	resources, err := s.bookingSvc.ListResources(ctx, org.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	documents, err := s.documentSvc.List(ctx, org.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body := gin.H{
		"org":       org,
		"role":      role,
		"resources": resources,
		"documents": documents,
		"storage": gin.H{
			"used":  org.StorageUsed,
			"limit": org.StorageLimit,
		},
	}

	if role == authorization.RoleOwner || role == authorization.RoleAdmin {
		members, err := s.orgsvc.ListMembers(ctx, org.ID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		submissions, err := s.formSvc.List(ctx, org.ID, "")
		if err != nil {
			AbortWithError(c, err)
			return
		}
		newsletters, err := s.newsletterSvc.List(ctx, org.ID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		body["members"] = members
		body["submissions"] = submissions
		body["newsletters"] = newsletters
	}

	c.JSON(http.StatusOK, body)
}
