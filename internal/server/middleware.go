package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/config"
	obscontext "github.com/andreasgmg/fornet/internal/observability/context"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/andreasgmg/fornet/internal/orgcontext"
	"github.com/andreasgmg/fornet/internal/siteaccess"
	"github.com/andreasgmg/fornet/internal/tenant"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	contextUserKey = "user"
	contextOrgKey  = "org"
)

// Authenticate resolves the session cookie into an identity on the request
// context. Requests without a valid session continue anonymously.
func (s *Server) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			c.Next()
			return
		}

		_, user, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !isUnauthorizedError(err) {
				AbortWithError(c, err)
				return
			}
			s.sessions.Clear(c)
			c.Next()
			return
		}

		ctx := authorization.WithIdentity(c.Request.Context(), authorization.Identity{
			UserID: user.ID,
			Email:  user.Email,
		})
		ctx = obscontext.WithActor(ctx, "user", user.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserKey, user.ID.String())
		c.Next()
	}
}

func (s *Server) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authorization.IdentityFromContext(c.Request.Context()); !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// OrgMember loads the organization named by :sub and checks the caller's
// membership. The services re-check the role on every mutation.
func (s *Server) OrgMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		org, err := s.orgsvc.GetBySubdomain(c.Request.Context(), c.Param("sub"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		caller, err := s.guard.RequireOrgMember(c.Request.Context(), org.ID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		withTenant(c, org)
		c.Set(contextOrgKey, org)
		c.Set("role", caller.Role)
		c.Next()
	}
}

// withTenant tags request logs and spans with the organization.
func withTenant(c *gin.Context, org *orgdomain.Organization) {
	ctx := obscontext.WithOrgID(c.Request.Context(), org.ID.String())
	c.Request = c.Request.WithContext(obscontext.WithSubdomain(ctx, org.Subdomain))
}

func orgFromContext(c *gin.Context) *orgdomain.Organization {
	v, ok := c.Get(contextOrgKey)
	if !ok {
		return nil
	}
	org, _ := v.(*orgdomain.Organization)
	return org
}

// SiteContext resolves the tenant site named by :sub.
func (s *Server) SiteContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		org, err := s.orgsvc.GetBySubdomain(c.Request.Context(), c.Param("sub"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Request = c.Request.WithContext(orgcontext.WithSite(c.Request.Context(), org))
		withTenant(c, org)
		c.Next()
	}
}

// SiteGate blocks password-protected sites until the visitor holds a valid
// access cookie for that site.
func (s *Server) SiteGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgcontext.SiteFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrNotFound)
			return
		}
		if !org.PasswordProtected() {
			c.Next()
			return
		}
		token, _ := c.Cookie(siteaccess.CookieName(org.Subdomain))
		if err := s.siteAccess.Validate(org, token); err != nil {
			AbortWithError(c, ErrSiteLocked)
			return
		}
		c.Next()
	}
}

func siteFromContext(c *gin.Context) *orgdomain.Organization {
	org, _ := orgcontext.SiteFromContext(c.Request.Context())
	return org
}

type siteModule func(orgdomain.SiteConfig) bool

var (
	moduleNews       siteModule = func(cfg orgdomain.SiteConfig) bool { return cfg.ShowNews }
	moduleDocuments  siteModule = func(cfg orgdomain.SiteConfig) bool { return cfg.ShowDocuments }
	moduleBoard      siteModule = func(cfg orgdomain.SiteConfig) bool { return cfg.ShowBoard }
	moduleBooking    siteModule = func(cfg orgdomain.SiteConfig) bool { return cfg.ShowBooking }
	moduleBrokerInfo siteModule = func(cfg orgdomain.SiteConfig) bool { return cfg.ShowBrokerInfo }
)

// requireModule hides site sections the organization has switched off.
func (s *Server) requireModule(enabled siteModule) gin.HandlerFunc {
	return func(c *gin.Context) {
		org := siteFromContext(c)
		if org == nil || !enabled(org.SiteConfig()) {
			AbortWithError(c, ErrNotFound)
			return
		}
		c.Next()
	}
}

func (s *Server) PublicFormRateLimit(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.formLimiter.Enabled() {
			c.Next()
			return
		}

		allowed, retryAfter := s.formLimiter.Allow(c.Request.Context(), endpoint, c.Param("sub"), c.ClientIP())
		if !allowed {
			if retryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			}
			_ = c.Error(ErrTooManyRequests)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "För många försök. Vänta en stund och försök igen."})
			return
		}
		c.Next()
	}
}

// siteCORS lets pages on tenant hosts call the site API with their cookies.
func siteCORS(cfg config.Config) gin.HandlerFunc {
	root := strings.ToLower(cfg.RootDomain)
	policy := cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool {
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			host := strings.ToLower(u.Hostname())
			return host == root || strings.HasSuffix(host, "."+root)
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           600,
	})
	return func(c *gin.Context) {
		policy.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// markRewrite records the pre-rewrite path for the request log.
func markRewrite() gin.HandlerFunc {
	return func(c *gin.Context) {
		if original, ok := tenant.OriginalPath(c.Request.Context()); ok {
			c.Set("rewritten_from", original)
		}
		c.Next()
	}
}

func (s *Server) logWarn(c *gin.Context, msg string, err error) {
	s.log.Warn(msg,
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err),
	)
}
