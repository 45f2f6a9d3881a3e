package service

import (
	"context"
	"testing"
	"time"

	authdomain "github.com/andreasgmg/fornet/internal/auth/domain"
	authrepository "github.com/andreasgmg/fornet/internal/auth/repository"
	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/config"
	"github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/andreasgmg/fornet/internal/organization/repository"
	"github.com/andreasgmg/fornet/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	repo  domain.Repository
	users authdomain.Repository
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&authdomain.User{}, &domain.Organization{}, &domain.Membership{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	enforcer, err := authorization.NewMemoryEnforcer()
	require.NoError(t, err)

	repo := repository.NewRepository(conn)
	users, _ := authrepository.New(conn)
	clk := clock.NewFakeClock(time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC))
	guard := authorization.NewGuard(authorization.GuardParams{
		Log:      zap.NewNop(),
		Members:  repository.NewMembershipReader(repo),
		Enforcer: enforcer,
	})

	svc := NewService(Params{
		DB:      conn,
		Log:     zap.NewNop(),
		Repo:    repo,
		Users:   users,
		Guard:   guard,
		GenID:   node,
		Clock:   clk,
		Tenancy: config.NewStaticTenancyHolder(config.DefaultTenancyConfig()),
	})
	return &fixture{svc: svc, repo: repo, users: users, db: conn, node: node, clock: clk}
}

func (f *fixture) user(t *testing.T, email string, pro bool) context.Context {
	t.Helper()
	now := f.clock.Now()
	u := &authdomain.User{
		ID:        f.node.Generate(),
		Email:     email,
		IsPro:     pro,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.users.CreateUser(context.Background(), u))
	return authorization.WithIdentity(context.Background(), authorization.Identity{UserID: u.ID, Email: email})
}

func (f *fixture) org(t *testing.T, ctx context.Context, name, subdomain, typ string) *domain.Organization {
	t.Helper()
	org, err := f.svc.Create(ctx, domain.CreateOrganizationRequest{Name: name, Subdomain: subdomain, Type: typ})
	require.NoError(t, err)
	return org
}

func TestCreateHuntTeamDefaults(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "jaktledare@example.se", true)

	org := f.org(t, owner, "Björkens jaktlag", "bjorken", "hunt")

	assert.Equal(t, "bjorken", org.Subdomain)
	assert.Equal(t, domain.TypeHunt, org.Type)
	assert.Equal(t, config.DefaultStorageLimit, org.StorageLimit)
	assert.Equal(t, "Europe/Stockholm", org.TimezoneName)

	stored, err := f.svc.GetBySubdomain(context.Background(), "bjorken")
	require.NoError(t, err)
	cfg := stored.SiteConfig()
	assert.True(t, cfg.ShowCalendarWidget)
	assert.False(t, cfg.ShowBoard)
	assert.False(t, cfg.ShowContactWidget)
	assert.True(t, cfg.ShowMembershipForm)
	assert.Equal(t, "Ingen jakt", cfg.SnowStatusText)
	assert.True(t, cfg.ShowNews)

	caller, _ := authorization.IdentityFromContext(owner)
	role, found, err := f.repo.MembershipRole(context.Background(), org.ID, caller.UserID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, authorization.RoleOwner, role)
}

func TestCreateDerivesSubdomainFromName(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "ordf@example.se", true)

	org := f.org(t, owner, "Sjöviks Båtklubb", "", "boat")
	assert.Equal(t, "sjoviks-batklubb", org.Subdomain)
	assert.True(t, org.SiteConfig().ShowWaterStatus)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	pro := f.user(t, "pro@example.se", true)
	free := f.user(t, "free@example.se", false)

	_, err := f.svc.Create(context.Background(), domain.CreateOrganizationRequest{Name: "Vägföreningen"})
	assert.ErrorIs(t, err, authorization.ErrUnauthenticated)

	_, err = f.svc.Create(free, domain.CreateOrganizationRequest{Name: "Vägföreningen"})
	assert.ErrorIs(t, err, domain.ErrProRequired)

	_, err = f.svc.Create(pro, domain.CreateOrganizationRequest{Name: "Vägföreningen", Subdomain: "ö!"})
	assert.ErrorIs(t, err, domain.ErrSubdomainTooShort)

	_, err = f.svc.Create(pro, domain.CreateOrganizationRequest{Name: "Vägföreningen", Subdomain: "App"})
	assert.ErrorIs(t, err, domain.ErrSubdomainReserved)

	f.org(t, pro, "Vägföreningen", "vagen", "road")
	_, err = f.svc.Create(pro, domain.CreateOrganizationRequest{Name: "Annan väg", Subdomain: "Vägen"})
	assert.ErrorIs(t, err, domain.ErrSubdomainTaken)
}

func TestMemberCannotManage(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "agare@example.se", true)
	org := f.org(t, owner, "BRF Ängen", "angen", "brf")

	_, err := f.svc.InviteMember(owner, org.ID, domain.InviteRequest{Email: "medlem@example.se", Role: "member"})
	require.NoError(t, err)

	member := f.user(t, "medlem@example.se", false)
	caller, _ := authorization.IdentityFromContext(member)
	claimed, err := f.svc.ClaimInvites(context.Background(), caller.UserID, caller.Email)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claimed)

	_, err = f.svc.UpdateModule(member, "angen", "show_booking", false)
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	stranger := f.user(t, "okand@example.se", false)
	_, err = f.svc.UpdateModule(stranger, "angen", "show_booking", false)
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	_, err = f.svc.UpdateModule(context.Background(), "angen", "show_booking", false)
	assert.ErrorIs(t, err, authorization.ErrUnauthenticated)
}

func TestInviteAndClaim(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "agare@example.se", true)
	org := f.org(t, owner, "Stugbyn", "stugbyn", "cabin")

	invite, err := f.svc.InviteMember(owner, org.ID, domain.InviteRequest{Email: "  Kalle@Example.SE "})
	require.NoError(t, err)
	assert.Equal(t, "kalle@example.se", invite.Email)
	assert.Equal(t, authorization.RoleAdmin, invite.Role)
	assert.Equal(t, domain.MembershipPending, invite.Status)
	assert.Nil(t, invite.UserID)

	_, err = f.svc.InviteMember(owner, org.ID, domain.InviteRequest{Email: "kalle@example.se"})
	assert.ErrorIs(t, err, domain.ErrAlreadyInvited)

	_, err = f.svc.InviteMember(owner, org.ID, domain.InviteRequest{Email: "inte-mejl"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	kalle := f.user(t, "kalle@example.se", false)
	caller, _ := authorization.IdentityFromContext(kalle)

	claimed, err := f.svc.ClaimInvites(context.Background(), caller.UserID, "KALLE@example.se")
	require.NoError(t, err)
	assert.Equal(t, int64(1), claimed)

	claimed, err = f.svc.ClaimInvites(context.Background(), caller.UserID, "kalle@example.se")
	require.NoError(t, err)
	assert.Equal(t, int64(0), claimed)

	orgs, err := f.svc.ListForUser(kalle)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "stugbyn", orgs[0].Subdomain)
	assert.Equal(t, authorization.RoleAdmin, orgs[0].Role)

	_, err = f.svc.UpdateModule(kalle, "stugbyn", "show_map_widget", true)
	require.NoError(t, err)

	count, err := f.svc.CountActiveMembers(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "agare@example.se", true)
	org := f.org(t, owner, "Stugbyn", "stugbyn", "cabin")

	invite, err := f.svc.InviteMember(owner, org.ID, domain.InviteRequest{Email: "anna@example.se"})
	require.NoError(t, err)

	members, err := f.svc.ListMembers(owner, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	var ownerMembership domain.Membership
	for _, m := range members {
		if m.Role == authorization.RoleOwner {
			ownerMembership = m
		}
	}
	assert.ErrorIs(t, f.svc.RemoveMember(owner, ownerMembership.ID), domain.ErrCannotRemoveOwner)

	require.NoError(t, f.svc.RemoveMember(owner, invite.ID))
	assert.ErrorIs(t, f.svc.RemoveMember(owner, invite.ID), domain.ErrMemberNotFound)
}

func TestUpdateSettingsAndCache(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "agare@example.se", true)
	f.org(t, owner, "Vägföreningen", "vagen", "road")

	// warm the cache
	_, err := f.svc.GetBySubdomain(context.Background(), "vagen")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	updated, err := f.svc.UpdateSnowStatus(owner, "vagen", "Plogat 06:30")
	require.NoError(t, err)
	assert.Equal(t, "Plogat 06:30", updated.SiteConfig().SnowStatusText)
	require.NotNil(t, updated.SiteConfig().SnowUpdatedAt)
	assert.True(t, updated.SiteConfig().SnowUpdatedAt.Equal(f.clock.Now()))

	public, err := f.svc.GetBySubdomain(context.Background(), "vagen")
	require.NoError(t, err)
	assert.Equal(t, "Plogat 06:30", public.SiteConfig().SnowStatusText)
	assert.True(t, public.SiteConfig().ShowBoard)

	name := "Vägföreningen Norra"
	level := "critical"
	msg := "Vägen är avstängd"
	_, err = f.svc.UpdateSettings(owner, "vagen", domain.UpdateSettingsRequest{Name: &name, AlertLevel: &level, AlertMessage: &msg})
	require.NoError(t, err)

	public, err = f.svc.GetBySubdomain(context.Background(), "vagen")
	require.NoError(t, err)
	assert.Equal(t, "Vägföreningen Norra", public.Name)
	assert.Equal(t, "critical", public.AlertLevel)

	bad := "panik"
	_, err = f.svc.UpdateSettings(owner, "vagen", domain.UpdateSettingsRequest{AlertLevel: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidAlertLevel)

	_, err = f.svc.UpdateModule(owner, "vagen", "show_rocket", true)
	assert.ErrorIs(t, err, domain.ErrUnknownModule)

	_, err = f.svc.UpdateModule(owner, "saknas", "show_news", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSitePassword(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "agare@example.se", true)
	f.org(t, owner, "Jaktlaget", "jaktlaget", "hunt")

	_, err := f.svc.CheckSitePassword(context.Background(), "jaktlaget", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.SetSitePassword(owner, "jaktlaget", "alg2024"))

	_, err = f.svc.CheckSitePassword(context.Background(), "jaktlaget", "fel")
	assert.ErrorIs(t, err, domain.ErrWrongSitePassword)

	org, err := f.svc.CheckSitePassword(context.Background(), "jaktlaget", "alg2024")
	require.NoError(t, err)
	assert.True(t, org.PasswordProtected())

	require.NoError(t, f.svc.SetSitePassword(owner, "jaktlaget", ""))
	org, err = f.svc.GetBySubdomain(context.Background(), "jaktlaget")
	require.NoError(t, err)
	assert.False(t, org.PasswordProtected())
}

func TestStorageQuota(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "agare@example.se", true)
	org := f.org(t, owner, "Båtklubben", "batklubben", "boat")
	ctx := context.Background()

	require.NoError(t, f.svc.CheckQuota(ctx, org.ID, config.DefaultStorageLimit))
	assert.ErrorIs(t, f.svc.CheckQuota(ctx, org.ID, config.DefaultStorageLimit+1), domain.ErrStorageFull)

	require.NoError(t, f.svc.AddUsage(ctx, org.ID, config.DefaultStorageLimit-10))
	assert.ErrorIs(t, f.svc.AddUsage(ctx, org.ID, 11), domain.ErrStorageFull)
	require.NoError(t, f.svc.AddUsage(ctx, org.ID, 10))

	require.NoError(t, f.svc.AddUsage(ctx, org.ID, -2*config.DefaultStorageLimit))
	stored, err := f.svc.GetByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.StorageUsed)

	assert.ErrorIs(t, f.svc.AddUsage(ctx, snowflake.ID(42), 1), domain.ErrNotFound)
}

func TestDeleteRequiresOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "agare@example.se", true)
	org := f.org(t, owner, "Lokalen", "lokalen", "venue")

	_, err := f.svc.InviteMember(owner, org.ID, domain.InviteRequest{Email: "admin@example.se"})
	require.NoError(t, err)
	admin := f.user(t, "admin@example.se", false)
	caller, _ := authorization.IdentityFromContext(admin)
	_, err = f.svc.ClaimInvites(context.Background(), caller.UserID, caller.Email)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(admin, "lokalen"), authorization.ErrForbidden)
	require.NoError(t, f.svc.Delete(owner, "lokalen"))

	_, err = f.svc.GetBySubdomain(context.Background(), "lokalen")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
