package siteaccess

import (
	"context"
	"testing"
	"time"

	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/config"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrgs struct {
	orgdomain.Service
	orgs     map[string]*orgdomain.Organization
	password string
}

func (f *fakeOrgs) CheckSitePassword(_ context.Context, subdomain, attempt string) (*orgdomain.Organization, error) {
	org, ok := f.orgs[subdomain]
	if !ok {
		return nil, orgdomain.ErrNotFound
	}
	if attempt != f.password {
		return nil, orgdomain.ErrWrongSitePassword
	}
	return org, nil
}

func hashed(s string) *string { return &s }

func newTestService(t *testing.T) (*Service, *clock.FakeClock) {
	t.Helper()
	clk := clock.NewFakeClock(time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC))
	orgs := &fakeOrgs{
		orgs: map[string]*orgdomain.Organization{
			"bjorken": {ID: 1, Subdomain: "bjorken", SitePasswordHash: hashed("argon2id$v1")},
			"larkan":  {ID: 2, Subdomain: "larkan", SitePasswordHash: hashed("argon2id$v1")},
		},
		password: "älgpass",
	}
	svc, err := New(Params{
		Config: config.Config{SiteAccessSecret: "test-secret"},
		Log:    zap.NewNop(),
		Orgs:   orgs,
		Clock:  clk,
	})
	require.NoError(t, err)
	return svc, clk
}

func TestVerifyIssuesScopedToken(t *testing.T) {
	svc, _ := newTestService(t)

	grant, err := svc.Verify(context.Background(), "bjorken", "älgpass")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 19, 8, 0, 0, 0, time.UTC), grant.ExpiresAt)

	bjorken := svc.orgs.(*fakeOrgs).orgs["bjorken"]
	larkan := svc.orgs.(*fakeOrgs).orgs["larkan"]
	assert.NoError(t, svc.Validate(bjorken, grant.Token))
	assert.ErrorIs(t, svc.Validate(larkan, grant.Token), ErrInvalidToken)
	assert.ErrorIs(t, svc.Validate(bjorken, grant.Token+"x"), ErrInvalidToken)
	assert.ErrorIs(t, svc.Validate(bjorken, ""), ErrInvalidToken)
	assert.ErrorIs(t, svc.Validate(nil, grant.Token), ErrInvalidToken)
}

func TestTokenBoundToOrganization(t *testing.T) {
	svc, _ := newTestService(t)

	grant, err := svc.Verify(context.Background(), "bjorken", "älgpass")
	require.NoError(t, err)

	recreated := &orgdomain.Organization{ID: 99, Subdomain: "bjorken", SitePasswordHash: hashed("argon2id$v1")}
	assert.ErrorIs(t, svc.Validate(recreated, grant.Token), ErrInvalidToken)
}

func TestPasswordChangeRevokesTokens(t *testing.T) {
	svc, _ := newTestService(t)

	grant, err := svc.Verify(context.Background(), "bjorken", "älgpass")
	require.NoError(t, err)

	org := *svc.orgs.(*fakeOrgs).orgs["bjorken"]
	require.NoError(t, svc.Validate(&org, grant.Token))

	org.SitePasswordHash = hashed("argon2id$v2")
	assert.ErrorIs(t, svc.Validate(&org, grant.Token), ErrInvalidToken)

	org.SitePasswordHash = nil
	assert.ErrorIs(t, svc.Validate(&org, grant.Token), ErrInvalidToken)
}

func TestVerifyWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Verify(context.Background(), "bjorken", "fel")
	assert.ErrorIs(t, err, orgdomain.ErrWrongSitePassword)
}

func TestTokenExpires(t *testing.T) {
	svc, clk := newTestService(t)

	grant, err := svc.Verify(context.Background(), "bjorken", "älgpass")
	require.NoError(t, err)

	clk.Advance(TokenTTL + time.Minute)
	assert.ErrorIs(t, svc.Validate(svc.orgs.(*fakeOrgs).orgs["bjorken"], grant.Token), ErrInvalidToken)
}

func TestTokenFromOtherKeyRejected(t *testing.T) {
	svc, _ := newTestService(t)
	other, err := New(Params{
		Config: config.Config{SiteAccessSecret: "another-secret"},
		Log:    zap.NewNop(),
		Orgs:   svc.orgs,
		Clock:  svc.clock,
	})
	require.NoError(t, err)

	grant, err := other.Verify(context.Background(), "bjorken", "älgpass")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Validate(svc.orgs.(*fakeOrgs).orgs["bjorken"], grant.Token), ErrInvalidToken)
}

func TestProductionRequiresSecret(t *testing.T) {
	_, err := New(Params{
		Config: config.Config{Environment: "production"},
		Log:    zap.NewNop(),
		Clock:  clock.NewSystem(),
	})
	assert.Error(t, err)
}

func TestCookieName(t *testing.T) {
	assert.Equal(t, "access_bjorken", CookieName(" Bjorken "))
}
