package server

import (
	"net/http"

	authdomain "github.com/andreasgmg/fornet/internal/auth/domain"
	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/gin-gonic/gin"
)

func (s *Server) Signup(c *gin.Context) {
	var req authdomain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authsvc.Signup(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)
	c.JSON(http.StatusCreated, gin.H{"user": result.User})
}

func (s *Server) Login(c *gin.Context) {
	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{"user": result.User})
}

// Logout always clears the cookie. An unknown or stale token is not an error.
func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		if err := s.authsvc.Logout(c.Request.Context(), token); err != nil && !isUnauthorizedError(err) {
			AbortWithError(c, err)
			return
		}
	}

	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) Me(c *gin.Context) {
	caller, err := authorization.RequireIdentity(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	user, err := s.authsvc.GetUser(c.Request.Context(), caller.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	orgs, err := s.orgsvc.ListForUser(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.View(), "orgs": orgs})
}

type authPage struct {
	Page          string            `json:"page"`
	Authenticated bool              `json:"authenticated"`
	Redirect      string            `json:"redirect,omitempty"`
	Endpoints     map[string]string `json:"endpoints"`
}

// LoginPage describes the login flow for the admin host. A caller that
// already has a session is pointed at the landing path.
func (s *Server) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, s.authPage(c, "login"))
}

func (s *Server) SignupPage(c *gin.Context) {
	c.JSON(http.StatusOK, s.authPage(c, "signup"))
}

func (s *Server) authPage(c *gin.Context, page string) authPage {
	_, authenticated := authorization.IdentityFromContext(c.Request.Context())

	out := authPage{
		Page:          page,
		Authenticated: authenticated,
		Endpoints: map[string]string{
			"signup": "/api/auth/signup",
			"login":  "/api/auth/login",
			"logout": "/api/auth/logout",
			"me":     "/api/auth/me",
		},
	}
	if authenticated {
		out.Redirect = s.tenancy.Get().AdminLandingPath
	}
	return out
}

func clientMeta(c *gin.Context) authdomain.ClientMeta {
	return authdomain.ClientMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}
