package service

import (
	"context"
	"testing"
	"time"

	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/document/domain"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	orgrepository "github.com/andreasgmg/fornet/internal/organization/repository"
	"github.com/andreasgmg/fornet/pkg/db"
	"github.com/andreasgmg/fornet/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc   domain.Service
	orgs  orgdomain.Repository
	org   *orgdomain.Organization
	admin context.Context
	node  *snowflake.Node
	clock *clock.FakeClock
}

func newFixture(t *testing.T, limit int64) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&orgdomain.Organization{}, &orgdomain.Membership{}, &domain.Document{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	enforcer, err := authorization.NewMemoryEnforcer()
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC))

	orgs := orgrepository.NewRepository(conn)
	org := &orgdomain.Organization{
		ID:           node.Generate(),
		Name:         "Vägföreningen Norrby",
		Subdomain:    "norrby",
		Type:         orgdomain.TypeRoad,
		OwnerID:      node.Generate(),
		StorageLimit: limit,
		TimezoneName: "Europe/Stockholm",
		CreatedAt:    clk.Now(),
		UpdatedAt:    clk.Now(),
	}
	require.NoError(t, orgs.CreateOrganization(context.Background(), org))

	f := &fixture{orgs: orgs, org: org, node: node, clock: clk}
	f.admin = f.member(t, authorization.RoleAdmin)

	f.svc = NewService(Params{
		DB:   conn,
		Log:  zap.NewNop(),
		Repo: repository.ProvideStore[domain.Document](conn),
		Orgs: orgs,
		Guard: authorization.NewGuard(authorization.GuardParams{
			Log:      zap.NewNop(),
			Members:  orgrepository.NewMembershipReader(orgs),
			Enforcer: enforcer,
		}),
		GenID: node,
		Clock: clk,
	})
	return f
}

func (f *fixture) member(t *testing.T, role string) context.Context {
	t.Helper()
	userID := f.node.Generate()
	require.NoError(t, f.orgs.AddMember(context.Background(), &orgdomain.Membership{
		ID:        f.node.Generate(),
		OrgID:     f.org.ID,
		UserID:    &userID,
		Email:     userID.String() + "@example.se",
		Role:      role,
		Status:    orgdomain.MembershipActive,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}))
	return authorization.WithIdentity(context.Background(), authorization.Identity{UserID: userID})
}

func (f *fixture) used(t *testing.T) int64 {
	t.Helper()
	org, err := f.orgs.GetByID(context.Background(), f.org.ID)
	require.NoError(t, err)
	return org.StorageUsed
}

func TestUploadChargesQuota(t *testing.T) {
	f := newFixture(t, 1000)

	doc, err := f.svc.Upload(f.admin, f.org.ID, domain.UploadRequest{Title: "Stadgar", FileName: "stadgar 2024.pdf", Size: 600})
	require.NoError(t, err)
	assert.Equal(t, int64(600), f.used(t))
	assert.Equal(t, "/dokument/"+doc.ID.String()+"/stadgar%202024.pdf", doc.URL)

	_, err = f.svc.Upload(f.admin, f.org.ID, domain.UploadRequest{Title: "Protokoll", FileName: "p.pdf", Size: 500})
	assert.ErrorIs(t, err, orgdomain.ErrStorageFull)
	assert.Equal(t, int64(600), f.used(t))

	docs, err := f.svc.List(context.Background(), f.org.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1, "a rejected upload leaves no metadata behind")

	_, err = f.svc.Upload(f.admin, f.org.ID, domain.UploadRequest{Title: "Karta", FileName: "karta.png", Size: 400, URL: "https://cdn.example.se/karta.png"})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), f.used(t))
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t, 1000)

	_, err := f.svc.Upload(f.admin, f.org.ID, domain.UploadRequest{FileName: "a.pdf", Size: 1})
	assert.ErrorIs(t, err, domain.ErrMissingFields)

	_, err = f.svc.Upload(f.admin, f.org.ID, domain.UploadRequest{Title: "A", Size: 1})
	assert.ErrorIs(t, err, domain.ErrMissingFields)

	_, err = f.svc.Upload(f.admin, f.org.ID, domain.UploadRequest{Title: "A", FileName: "a.pdf", Size: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidSize)

	_, err = f.svc.Upload(f.member(t, authorization.RoleMember), f.org.ID, domain.UploadRequest{Title: "A", FileName: "a.pdf", Size: 1})
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	_, err = f.svc.Upload(context.Background(), f.org.ID, domain.UploadRequest{Title: "A", FileName: "a.pdf", Size: 1})
	assert.ErrorIs(t, err, authorization.ErrUnauthenticated)
}

func TestDeleteReleasesQuota(t *testing.T) {
	f := newFixture(t, 1000)

	doc, err := f.svc.Upload(f.admin, f.org.ID, domain.UploadRequest{Title: "Stadgar", FileName: "s.pdf", Size: 300})
	require.NoError(t, err)
	require.Equal(t, int64(300), f.used(t))

	assert.ErrorIs(t, f.svc.Delete(f.member(t, authorization.RoleMember), doc.ID), authorization.ErrForbidden)

	require.NoError(t, f.svc.Delete(f.admin, doc.ID))
	assert.Equal(t, int64(0), f.used(t))

	assert.ErrorIs(t, f.svc.Delete(f.admin, doc.ID), domain.ErrNotFound)
}
