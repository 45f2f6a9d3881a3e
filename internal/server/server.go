package server

import (
	"context"
	"net/http"
	"time"

	"github.com/andreasgmg/fornet/internal/audit"
	auditdomain "github.com/andreasgmg/fornet/internal/audit/domain"
	"github.com/andreasgmg/fornet/internal/auth"
	authdomain "github.com/andreasgmg/fornet/internal/auth/domain"
	"github.com/andreasgmg/fornet/internal/auth/session"
	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/billing"
	"github.com/andreasgmg/fornet/internal/booking"
	bookingdomain "github.com/andreasgmg/fornet/internal/booking/domain"
	"github.com/andreasgmg/fornet/internal/cache"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/config"
	"github.com/andreasgmg/fornet/internal/content"
	contentdomain "github.com/andreasgmg/fornet/internal/content/domain"
	"github.com/andreasgmg/fornet/internal/document"
	documentdomain "github.com/andreasgmg/fornet/internal/document/domain"
	"github.com/andreasgmg/fornet/internal/form"
	formdomain "github.com/andreasgmg/fornet/internal/form/domain"
	"github.com/andreasgmg/fornet/internal/newsletter"
	newsletterdomain "github.com/andreasgmg/fornet/internal/newsletter/domain"
	"github.com/andreasgmg/fornet/internal/observability"
	obsmiddleware "github.com/andreasgmg/fornet/internal/observability/logger"
	obsmetrics "github.com/andreasgmg/fornet/internal/observability/metrics"
	obstracing "github.com/andreasgmg/fornet/internal/observability/tracing"
	"github.com/andreasgmg/fornet/internal/organization"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/andreasgmg/fornet/internal/providers"
	"github.com/andreasgmg/fornet/internal/ratelimit"
	"github.com/andreasgmg/fornet/internal/siteaccess"
	"github.com/andreasgmg/fornet/internal/tenant"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	cache.Module,
	providers.Module,
	ratelimit.Module,
	authorization.Module,
	audit.Module,
	auth.Module,
	organization.Module,
	booking.Module,
	content.Module,
	document.Module,
	form.Module,
	newsletter.Module,
	siteaccess.Module,
	billing.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(markRewrite())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

type runParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Engine    *gin.Engine
	Cfg       config.Config
	Tenancy   *config.TenancyHolder
	Log       *zap.Logger
}

func run(p runParams) {
	srv := &http.Server{
		Addr:              p.Cfg.HTTPAddr,
		Handler:           NewHandler(p.Engine, p.Cfg, p.Tenancy, p.Log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Log.Info("http server listening",
				zap.String("addr", p.Cfg.HTTPAddr),
				zap.String("root_domain", p.Cfg.RootDomain),
				zap.String("admin_host", p.Cfg.AdminHost()),
			)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// NewHandler puts the tenant resolver in front of the engine. Tenancy
// settings are read per request so a reloaded fornet.yml applies at once.
func NewHandler(engine http.Handler, cfg config.Config, tenancy *config.TenancyHolder, log *zap.Logger) http.Handler {
	source := func() tenant.Config {
		t := tenancy.Get()
		return tenant.Config{
			RootDomain:     cfg.RootDomain,
			AdminSubdomain: cfg.AdminSubdomain,
			LandingPath:    t.AdminLandingPath,
			LoginPath:      t.LoginPath,
		}
	}
	probe := func(r *http.Request) bool {
		_, ok := session.ReadToken(r, session.DefaultCookieName)
		return ok
	}
	return tenant.Handler(engine, source, probe, log.Named("tenant.resolver"))
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	clock         clock.Clock
	sessions      *session.Manager
	guard         authorization.Guard
	authsvc       authdomain.Service
	orgsvc        orgdomain.Service
	bookingSvc    bookingdomain.Service
	contentSvc    contentdomain.Service
	documentSvc   documentdomain.Service
	formSvc       formdomain.Service
	newsletterSvc newsletterdomain.Service
	siteAccess    *siteaccess.Service
	billingSvc    *billing.Service
	auditSvc      auditdomain.Service
	formLimiter   *ratelimit.PublicFormLimiter
	tenancy       *config.TenancyHolder
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	Clock         clock.Clock
	Sessions      *session.Manager
	Guard         authorization.Guard
	Authsvc       authdomain.Service
	OrgSvc        orgdomain.Service
	BookingSvc    bookingdomain.Service
	ContentSvc    contentdomain.Service
	DocumentSvc   documentdomain.Service
	FormSvc       formdomain.Service
	NewsletterSvc newsletterdomain.Service
	SiteAccess    *siteaccess.Service
	BillingSvc    *billing.Service
	AuditSvc      auditdomain.Service
	Tenancy       *config.TenancyHolder
	FormLimiter   *ratelimit.PublicFormLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		clock:         p.Clock,
		sessions:      p.Sessions,
		guard:         p.Guard,
		authsvc:       p.Authsvc,
		orgsvc:        p.OrgSvc,
		bookingSvc:    p.BookingSvc,
		contentSvc:    p.ContentSvc,
		documentSvc:   p.DocumentSvc,
		formSvc:       p.FormSvc,
		newsletterSvc: p.NewsletterSvc,
		siteAccess:    p.SiteAccess,
		billingSvc:    p.BillingSvc,
		auditSvc:      p.AuditSvc,
		formLimiter:   p.FormLimiter,
		tenancy:       p.Tenancy,
	}

	svc.engine.Use(svc.Authenticate())

	svc.registerAuthRoutes()
	svc.registerAdminRoutes()
	svc.registerDashboardRoutes()
	svc.registerSiteRoutes()
	svc.registerSiteAPIRoutes()
	svc.registerWebhookRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/api/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.SessionRequired(), s.Me)

	// The tenant resolver passes these through on the admin host without a
	// session check.
	login := s.tenancy.Get().LoginPath
	s.engine.GET("/login", s.LoginPage)
	if login != "" && login != "/login" && login != "/signup" {
		s.engine.GET(login, s.LoginPage)
	}
	s.engine.GET("/signup", s.SignupPage)
}

func (s *Server) registerAdminRoutes() {
	api := s.engine.Group("/api/orgs", s.SessionRequired())

	api.GET("", s.ListOrgs)
	api.POST("", s.CreateOrg)

	org := api.Group("/:sub", s.OrgMember())
	{
		org.GET("", s.GetOrg)
		org.DELETE("", s.DeleteOrg)
		org.PATCH("/settings", s.UpdateSettings)
		org.PUT("/modules/:key", s.UpdateModule)
		org.PUT("/snow-status", s.UpdateSnowStatus)
		org.PUT("/site-password", s.SetSitePassword)
		org.GET("/audit", s.ListAuditLogs)

		// -------- Members --------
		org.GET("/members", s.ListMembers)
		org.POST("/members", s.InviteMember)
		org.DELETE("/members/:id", s.RemoveMember)

		// -------- Booking --------
		org.GET("/resources", s.ListResources)
		org.POST("/resources", s.CreateResource)
		org.DELETE("/resources/:id", s.DeleteResource)
		org.GET("/resources/:id/bookings", s.ListResourceBookings)
		org.GET("/resources/:id/schedule.pdf", s.ExportSchedule)
		org.DELETE("/bookings/:id", s.CancelBookingAsAdmin)

		// -------- Content --------
		org.GET("/posts", s.ListPosts)
		org.POST("/posts", s.CreatePost)
		org.PATCH("/posts/:id", s.UpdatePost)
		org.DELETE("/posts/:id", s.DeletePost)

		org.GET("/pages", s.ListPages)
		org.POST("/pages", s.CreatePage)
		org.PATCH("/pages/:id", s.UpdatePage)
		org.DELETE("/pages/:id", s.DeletePage)

		org.GET("/events", s.ListEvents)
		org.POST("/events", s.CreateEvent)
		org.DELETE("/events/:id", s.DeleteEvent)

		org.GET("/board", s.ListBoardMembers)
		org.POST("/board", s.AddBoardMember)
		org.DELETE("/board/:id", s.DeleteBoardMember)

		org.GET("/sponsors", s.ListSponsors)
		org.POST("/sponsors", s.AddSponsor)
		org.DELETE("/sponsors/:id", s.DeleteSponsor)

		// -------- Documents --------
		org.GET("/documents", s.ListDocuments)
		org.POST("/documents", s.UploadDocument)
		org.DELETE("/documents/:id", s.DeleteDocument)

		// -------- Forms --------
		org.GET("/forms", s.ListSubmissions)
		org.POST("/forms/:id/approve", s.ApproveApplication)
		org.DELETE("/forms/:id", s.RejectApplication)

		// -------- Newsletters --------
		org.GET("/newsletters", s.ListNewsletters)
		org.POST("/newsletters", s.SaveNewsletter)
		org.PUT("/newsletters/:id", s.SaveNewsletter)
		org.DELETE("/newsletters/:id", s.DeleteNewsletter)
		org.POST("/newsletters/:id/send", s.SendNewsletter)
	}
}

// registerDashboardRoutes serves the admin host. The tenant resolver
// rewrites every admin path below /dashboard.
func (s *Server) registerDashboardRoutes() {
	dashboard := s.engine.Group("/dashboard", s.SessionRequired())

	dashboard.GET("", s.ListOrgs)
	dashboard.GET("/:sub", s.OrgMember(), s.DashboardOverview)
}

// registerSiteRoutes serves tenant hosts. The tenant resolver rewrites
// <sub>.<root>/<path> to /sites/<sub>/<path>.
func (s *Server) registerSiteRoutes() {
	site := s.engine.Group("/sites/:sub", s.SiteContext(), s.SiteGate())

	site.GET("", s.SiteHome)
	site.GET("/", s.SiteHome)
	site.GET("/nyheter", s.requireModule(moduleNews), s.SitePosts)
	site.GET("/p/:id", s.SitePost)
	site.GET("/s/:slug", s.SitePage)
	site.GET("/kalender", s.SiteEvents)
	site.GET("/dokument", s.requireModule(moduleDocuments), s.SiteDocuments)
	site.GET("/styrelsen", s.requireModule(moduleBoard), s.SiteBoard)
	site.GET("/boka", s.requireModule(moduleBooking), s.SiteBooking)
	site.GET("/maklarinfo", s.requireModule(moduleBrokerInfo), s.SiteBrokerInfo)
}

// registerSiteAPIRoutes holds the actions tenant pages post to.
func (s *Server) registerSiteAPIRoutes() {
	api := s.engine.Group("/api/sites/:sub", siteCORS(s.cfg), s.SiteContext())

	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.POST("/access", s.PublicFormRateLimit("site_access"), s.VerifySitePassword)

	gated := api.Group("", s.SiteGate())
	{
		gated.GET("/search", s.SearchSite)
		gated.GET("/resources/:id/bookings", s.requireModule(moduleBooking), s.SiteResourceBookings)
		gated.POST("/bookings", s.requireModule(moduleBooking), s.PublicFormRateLimit("booking"), s.CreateBooking)
		gated.DELETE("/bookings/:id", s.CancelBooking)
		gated.POST("/forms/:type", s.PublicFormRateLimit("form"), s.SubmitForm)
	}
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/stripe", s.StripeWebhook)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
