package service

import (
	"context"
	"errors"
	"net/mail"
	"slices"
	"strings"

	authdomain "github.com/andreasgmg/fornet/internal/auth/domain"
	"github.com/andreasgmg/fornet/internal/auth/password"
	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/cache"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/config"
	"github.com/andreasgmg/fornet/internal/observability/metrics"
	"github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/andreasgmg/fornet/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Users   authdomain.Repository
	Guard   authorization.Guard
	GenID   *snowflake.Node
	Clock   clock.Clock
	Tenancy *config.TenancyHolder
	Sites   cache.SiteCache  `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	users   authdomain.Repository
	guard   authorization.Guard
	genID   *snowflake.Node
	clock   clock.Clock
	tenancy *config.TenancyHolder
	sites   cache.SiteCache
	metrics *metrics.Metrics
}

func NewService(p Params) domain.Service {
	sites := p.Sites
	if sites == nil {
		sites = cache.NewSiteCache()
	}
	return &service{
		db:      p.DB,
		log:     p.Log.Named("organization.service"),
		repo:    p.Repo,
		users:   p.Users,
		guard:   p.Guard,
		genID:   p.GenID,
		clock:   p.Clock,
		tenancy: p.Tenancy,
		sites:   sites,
		metrics: p.Metrics,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateOrganizationRequest) (*domain.Organization, error) {
	caller, err := authorization.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UserByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			return nil, authorization.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsPro {
		return nil, domain.ErrProRequired
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	raw := strings.TrimSpace(req.Subdomain)
	if raw == "" {
		raw = name
	}
	subdomain := domain.NormalizeSubdomain(raw)
	if !domain.ValidSubdomain(subdomain) {
		return nil, domain.ErrSubdomainTooShort
	}
	tenancy := s.tenancy.Get()
	if tenancy.IsReserved(subdomain) {
		return nil, domain.ErrSubdomainReserved
	}

	orgType := domain.ParseOrgType(req.Type)
	now := s.clock.Now()
	org := &domain.Organization{
		ID:           s.genID.Generate(),
		Name:         name,
		Subdomain:    subdomain,
		Type:         orgType,
		OwnerID:      user.ID,
		Config:       datatypes.NewJSONType(domain.InitialConfig(orgType)),
		StorageLimit: tenancy.DefaultStorageLimit,
		TimezoneName: tenancy.DefaultTimezone,
		AlertLevel:   "none",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrganization(ctx, org); err != nil {
			return err
		}

		userID := user.ID
		return repo.AddMember(ctx, &domain.Membership{
			ID:        s.genID.Generate(),
			OrgID:     org.ID,
			UserID:    &userID,
			Email:     user.Email,
			Role:      authorization.RoleOwner,
			Status:    domain.MembershipActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSubdomainTaken
		}
		return nil, err
	}

	s.metrics.RecordOrganizationCreated(ctx, string(orgType))
	s.log.Info("organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("subdomain", org.Subdomain),
		zap.String("type", string(orgType)),
	)

	return org, nil
}

func (s *service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySubdomain serves the public site and may return a cached copy.
func (s *service) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Organization, error) {
	if org, ok := s.sites.Get(subdomain); ok {
		return &org, nil
	}
	org, err := s.repo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	s.sites.Set(*org)
	return org, nil
}

func (s *service) ListForUser(ctx context.Context) ([]domain.OrganizationListResponseItem, error) {
	caller, err := authorization.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListOrganizationsByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.OrganizationListResponseItem, 0, len(items))
	for _, item := range items {
		resp = append(resp, domain.OrganizationListResponseItem{
			ID:        item.ID.String(),
			Name:      item.Name,
			Subdomain: item.Subdomain,
			Type:      item.Type,
			Role:      item.Role,
			CreatedAt: item.CreatedAt,
		})
	}
	return resp, nil
}

func (s *service) Delete(ctx context.Context, subdomain string) error {
	org, err := s.repo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireOrgOwner(ctx, org.ID); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteOrganization(ctx, org.ID)
	})
	if err != nil {
		return err
	}
	s.sites.Invalidate(org.Subdomain)
	return nil
}

// loadForAdmin resolves an organization and requires the caller to manage it.
func (s *service) loadForAdmin(ctx context.Context, subdomain string) (*domain.Organization, error) {
	org, err := s.repo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, org.ID); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *service) UpdateModule(ctx context.Context, subdomain string, key string, enabled bool) (*domain.Organization, error) {
	patch, err := domain.ModulePatch(key, enabled)
	if err != nil {
		return nil, err
	}
	return s.UpdateSettings(ctx, subdomain, domain.UpdateSettingsRequest{Config: &patch})
}

func (s *service) UpdateSettings(ctx context.Context, subdomain string, req domain.UpdateSettingsRequest) (*domain.Organization, error) {
	org, err := s.loadForAdmin(ctx, subdomain)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.AlertLevel != nil {
		level := strings.ToLower(strings.TrimSpace(*req.AlertLevel))
		if !slices.Contains(domain.AlertLevels, level) {
			return nil, domain.ErrInvalidAlertLevel
		}
		fields["alert_level"] = level
	}
	texts := map[string]*string{
		"header_text":    req.HeaderText,
		"subheader_text": req.SubheaderText,
		"theme_color":    req.ThemeColor,
		"alert_message":  req.AlertMessage,
		"broker_info":    req.BrokerInfo,
		"swish_number":   req.SwishNumber,
		"swish_message":  req.SwishMessage,
		"hero_image_url": req.HeroImageURL,
		"map_image_url":  req.MapImageURL,
	}
	for column, value := range texts {
		if value != nil {
			fields[column] = strings.TrimSpace(*value)
		}
	}
	if req.Config != nil {
		fields["config"] = datatypes.NewJSONType(domain.Merge(org.SiteConfig(), *req.Config))
	}
	if len(fields) == 0 {
		return org, nil
	}
	fields["updated_at"] = s.clock.Now()

	if err := s.repo.UpdateFields(ctx, org.ID, fields); err != nil {
		return nil, err
	}
	s.sites.Invalidate(org.Subdomain)

	return s.repo.GetByID(ctx, org.ID)
}

func (s *service) UpdateSnowStatus(ctx context.Context, subdomain string, status string) (*domain.Organization, error) {
	status = strings.TrimSpace(status)
	now := s.clock.Now()
	return s.UpdateSettings(ctx, subdomain, domain.UpdateSettingsRequest{
		Config: &domain.ConfigPatch{SnowStatusText: &status, SnowUpdatedAt: &now},
	})
}

// SetSitePassword protects the public site. An empty password removes the
// protection.
func (s *service) SetSitePassword(ctx context.Context, subdomain string, secret string) error {
	org, err := s.loadForAdmin(ctx, subdomain)
	if err != nil {
		return err
	}

	var hash *string
	if secret = strings.TrimSpace(secret); secret != "" {
		encoded, err := password.Hash(secret)
		if err != nil {
			return err
		}
		hash = &encoded
	}

	if err := s.repo.UpdateFields(ctx, org.ID, map[string]any{
		"site_password_hash": hash,
		"updated_at":         s.clock.Now(),
	}); err != nil {
		return err
	}
	s.sites.Invalidate(org.Subdomain)
	return nil
}

func (s *service) CheckSitePassword(ctx context.Context, subdomain string, attempt string) (*domain.Organization, error) {
	org, err := s.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	if !org.PasswordProtected() {
		return org, nil
	}
	if !password.Verify(attempt, *org.SitePasswordHash) {
		return nil, domain.ErrWrongSitePassword
	}
	return org, nil
}

func (s *service) CheckQuota(ctx context.Context, orgID snowflake.ID, size int64) error {
	if size < 0 {
		return domain.ErrInvalidSize
	}
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org.StorageUsed+size > org.StorageLimit {
		return domain.ErrStorageFull
	}
	return nil
}

func (s *service) AddUsage(ctx context.Context, orgID snowflake.ID, delta int64) error {
	var err error
	switch {
	case delta > 0:
		err = s.repo.ReserveStorage(ctx, orgID, delta)
	case delta < 0:
		err = s.repo.ReleaseStorage(ctx, orgID, -delta)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	s.metrics.RecordStorageDelta(ctx, orgID.String(), delta)
	return nil
}

func (s *service) InviteMember(ctx context.Context, orgID snowflake.ID, req domain.InviteRequest) (*domain.Membership, error) {
	caller, err := s.guard.RequireOrgAdmin(ctx, orgID)
	if err != nil {
		return nil, err
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	switch role {
	case "":
		role = authorization.RoleAdmin
	case authorization.RoleAdmin, authorization.RoleMember:
	default:
		return nil, domain.ErrInvalidRole
	}

	now := s.clock.Now()
	invitedBy := caller.UserID
	member := &domain.Membership{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Email:     email,
		Role:      role,
		Status:    domain.MembershipPending,
		InvitedBy: &invitedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// An existing account with this email is linked the next time it logs in.
	if err := s.repo.AddMember(ctx, member); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyInvited
		}
		return nil, err
	}
	return member, nil
}

func (s *service) RemoveMember(ctx context.Context, membershipID snowflake.ID) error {
	member, err := s.repo.GetMember(ctx, membershipID)
	if err != nil {
		return err
	}
	org, err := s.repo.GetByID(ctx, member.OrgID)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, org.ID); err != nil {
		return err
	}

	if member.Role == authorization.RoleOwner || (member.UserID != nil && *member.UserID == org.OwnerID) {
		return domain.ErrCannotRemoveOwner
	}
	return s.repo.DeleteMember(ctx, member.ID)
}

func (s *service) ListMembers(ctx context.Context, orgID snowflake.ID) ([]domain.Membership, error) {
	if _, err := s.guard.RequireOrgAdmin(ctx, orgID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, orgID)
}

func (s *service) CountActiveMembers(ctx context.Context, orgID snowflake.ID) (int64, error) {
	return s.repo.CountActiveMembers(ctx, orgID)
}

// ClaimInvites links every pending membership addressed to email to userID.
// Running it again is a no-op.
func (s *service) ClaimInvites(ctx context.Context, userID snowflake.ID, email string) (int64, error) {
	if userID == 0 {
		return 0, domain.ErrInvalidUser
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return 0, domain.ErrInvalidEmail
	}

	claimed, err := s.repo.ClaimInvites(ctx, userID, normalized, s.clock.Now())
	if err != nil {
		return 0, err
	}
	s.metrics.RecordInvitesClaimed(ctx, claimed)
	return claimed, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}
