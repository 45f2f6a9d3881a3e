package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/content/domain"
	docdomain "github.com/andreasgmg/fornet/internal/document/domain"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	orgrepository "github.com/andreasgmg/fornet/internal/organization/repository"
	"github.com/andreasgmg/fornet/pkg/db"
	"github.com/andreasgmg/fornet/pkg/db/pagination"
	"github.com/andreasgmg/fornet/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc   domain.Service
	docs  repository.Repository[docdomain.Document]
	orgs  orgdomain.Repository
	org   *orgdomain.Organization
	admin context.Context
	node  *snowflake.Node
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&orgdomain.Organization{}, &orgdomain.Membership{},
		&domain.Post{}, &domain.Page{}, &domain.Event{}, &domain.BoardMember{}, &domain.Sponsor{},
		&docdomain.Document{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	enforcer, err := authorization.NewMemoryEnforcer()
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC))

	orgs := orgrepository.NewRepository(conn)
	f := &fixture{orgs: orgs, node: node, clock: clk}
	f.org = f.newOrg(t, "sjoviken")
	f.admin = f.member(t, f.org.ID, authorization.RoleAdmin)
	f.docs = repository.ProvideStore[docdomain.Document](conn)

	f.svc = NewService(Params{
		Log:       zap.NewNop(),
		Posts:     repository.ProvideStore[domain.Post](conn),
		Pages:     repository.ProvideStore[domain.Page](conn),
		Events:    repository.ProvideStore[domain.Event](conn),
		Board:     repository.ProvideStore[domain.BoardMember](conn),
		Sponsors:  repository.ProvideStore[domain.Sponsor](conn),
		Documents: f.docs,
		Orgs:      orgs,
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

func (f *fixture) newOrg(t *testing.T, subdomain string) *orgdomain.Organization {
	t.Helper()
	org := &orgdomain.Organization{
		ID:           f.node.Generate(),
		Name:         subdomain,
		Subdomain:    subdomain,
		Type:         orgdomain.TypeBoat,
		OwnerID:      f.node.Generate(),
		StorageLimit: 1 << 20,
		TimezoneName: "Europe/Stockholm",
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	require.NoError(t, f.orgs.CreateOrganization(context.Background(), org))
	return org
}

func (f *fixture) member(t *testing.T, orgID snowflake.ID, role string) context.Context {
	t.Helper()
	userID := f.node.Generate()
	require.NoError(t, f.orgs.AddMember(context.Background(), &orgdomain.Membership{
		ID:        f.node.Generate(),
		OrgID:     orgID,
		UserID:    &userID,
		Email:     userID.String() + "@example.se",
		Role:      role,
		Status:    orgdomain.MembershipActive,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}))
	return authorization.WithIdentity(context.Background(), authorization.Identity{UserID: userID})
}

func TestPostsRequireAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreatePost(context.Background(), f.org.ID, domain.PostInput{Title: "Sjösättning"})
	assert.ErrorIs(t, err, authorization.ErrUnauthenticated)

	_, err = f.svc.CreatePost(f.member(t, f.org.ID, authorization.RoleMember), f.org.ID, domain.PostInput{Title: "Sjösättning"})
	assert.ErrorIs(t, err, authorization.ErrForbidden)

	_, err = f.svc.CreatePost(f.admin, f.org.ID, domain.PostInput{Title: "  "})
	assert.ErrorIs(t, err, domain.ErrTitleRequired)

	post, err := f.svc.CreatePost(f.admin, f.org.ID, domain.PostInput{Title: "Sjösättning", Content: "Lördag 10:00"})
	require.NoError(t, err)

	other := f.newOrg(t, "annan")
	_, err = f.svc.UpdatePost(f.member(t, other.ID, authorization.RoleOwner), post.ID, domain.PostInput{Title: "Kapad"})
	assert.ErrorIs(t, err, authorization.ErrForbidden, "admins of another organization cannot edit")

	updated, err := f.svc.UpdatePost(f.admin, post.ID, domain.PostInput{Title: "Sjösättning flyttad", Content: "Söndag"})
	require.NoError(t, err)
	assert.Equal(t, "Sjösättning flyttad", updated.Title)

	_, err = f.svc.GetPost(context.Background(), other.ID, post.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.svc.GetPost(context.Background(), f.org.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Söndag", got.Content)

	require.NoError(t, f.svc.DeletePost(f.admin, post.ID))
	assert.ErrorIs(t, f.svc.DeletePost(f.admin, post.ID), domain.ErrNotFound)
}

func TestListPostsPaginates(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 5; i++ {
		_, err := f.svc.CreatePost(f.admin, f.org.ID, domain.PostInput{Title: fmt.Sprintf("Nyhet %d", i)})
		require.NoError(t, err)
	}

	first, err := f.svc.ListPosts(context.Background(), f.org.ID, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Posts, 2)
	assert.True(t, first.PageInfo.HasMore)
	assert.Equal(t, "Nyhet 4", first.Posts[0].Title)

	second, err := f.svc.ListPosts(context.Background(), f.org.ID, pagination.Pagination{PageSize: 2, PageToken: first.PageInfo.NextPageToken})
	require.NoError(t, err)
	require.Len(t, second.Posts, 2)
	assert.Equal(t, "Nyhet 2", second.Posts[0].Title)

	third, err := f.svc.ListPosts(context.Background(), f.org.ID, pagination.Pagination{PageSize: 2, PageToken: second.PageInfo.NextPageToken})
	require.NoError(t, err)
	require.Len(t, third.Posts, 1)
	assert.False(t, third.PageInfo.HasMore)
	assert.Empty(t, third.PageInfo.NextPageToken)

	_, err = f.svc.ListPosts(context.Background(), f.org.ID, pagination.Pagination{PageToken: "%%%"})
	assert.ErrorIs(t, err, pagination.ErrInvalidPageToken)
}

func TestCreatePageSlug(t *testing.T) {
	f := newFixture(t)

	page, err := f.svc.CreatePage(f.admin, f.org.ID, domain.PageInput{Title: "Regler för Bryggan", Content: "..."})
	require.NoError(t, err)
	assert.Equal(t, "regler-for-bryggan", page.Slug)

	_, err = f.svc.CreatePage(f.admin, f.org.ID, domain.PageInput{Title: "regler för bryggan"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)

	_, err = f.svc.CreatePage(f.admin, f.org.ID, domain.PageInput{Title: "!!!"})
	assert.ErrorIs(t, err, domain.ErrInvalidSlug)

	updated, err := f.svc.UpdatePage(f.admin, page.ID, domain.PageInput{Title: "Bryggregler", Content: "Nytt"})
	require.NoError(t, err)
	assert.Equal(t, "regler-for-bryggan", updated.Slug)

	got, err := f.svc.GetPageBySlug(context.Background(), f.org.ID, "regler-for-bryggan")
	require.NoError(t, err)
	assert.Equal(t, "Bryggregler", got.Title)

	_, err = f.svc.GetPageBySlug(context.Background(), f.org.ID, "saknas")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateEventUsesOrganizationTimeZone(t *testing.T) {
	f := newFixture(t)

	evt, err := f.svc.CreateEvent(f.admin, f.org.ID, domain.EventInput{Title: "Städdag", Date: "2024-05-25", Time: "09:00"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 25, 7, 0, 0, 0, time.UTC), evt.StartsAt)

	_, err = f.svc.CreateEvent(f.admin, f.org.ID, domain.EventInput{Title: "Midsommar", Date: "2024-06-21"})
	require.NoError(t, err)
	_, err = f.svc.CreateEvent(f.admin, f.org.ID, domain.EventInput{Title: "Förra året", Date: "2023-06-21"})
	require.NoError(t, err)

	_, err = f.svc.CreateEvent(f.admin, f.org.ID, domain.EventInput{Title: "Trasig", Date: "25 maj"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	upcoming, err := f.svc.ListUpcomingEvents(context.Background(), f.org.ID, f.clock.Now())
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "Städdag", upcoming[0].Title)
	assert.Equal(t, "Midsommar", upcoming[1].Title)
}

func TestSponsorWebsiteGetsScheme(t *testing.T) {
	f := newFixture(t)

	sponsor, err := f.svc.AddSponsor(f.admin, f.org.ID, domain.SponsorInput{Name: "Marinbutiken", WebsiteURL: "marinbutiken.se"})
	require.NoError(t, err)
	assert.Equal(t, "https://marinbutiken.se", sponsor.WebsiteURL)

	_, err = f.svc.AddSponsor(f.admin, f.org.ID, domain.SponsorInput{WebsiteURL: "x.se"})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	sponsors, err := f.svc.ListSponsors(context.Background(), f.org.ID)
	require.NoError(t, err)
	assert.Len(t, sponsors, 1)

	require.NoError(t, f.svc.DeleteSponsor(f.admin, sponsor.ID))
}

func TestBoardMembers(t *testing.T) {
	f := newFixture(t)

	m, err := f.svc.AddBoardMember(f.admin, f.org.ID, domain.BoardMemberInput{Name: "Eva", Role: "Ordförande", Email: " Eva@Example.se "})
	require.NoError(t, err)
	assert.Equal(t, "eva@example.se", m.Email)

	list, err := f.svc.ListBoardMembers(context.Background(), f.org.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, f.svc.DeleteBoardMember(f.member(t, f.org.ID, authorization.RoleMember), m.ID), authorization.ErrForbidden)
	require.NoError(t, f.svc.DeleteBoardMember(f.admin, m.ID))
}

func TestSearchReturnsTypedResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := f.svc.CreatePost(f.admin, f.org.ID, domain.PostInput{Title: fmt.Sprintf("Bryggan nyhet %d", i)})
		require.NoError(t, err)
	}
	_, err := f.svc.CreatePost(f.admin, f.org.ID, domain.PostInput{Title: "Fest"})
	require.NoError(t, err)
	_, err = f.svc.CreatePage(f.admin, f.org.ID, domain.PageInput{Title: "Bryggregler"})
	require.NoError(t, err)
	require.NoError(t, f.docs.Create(ctx, &docdomain.Document{
		ID: f.node.Generate(), OrgID: f.org.ID, Title: "Bryggritning", FileName: "b.pdf", URL: "/dokument/1/b.pdf", CreatedAt: f.clock.Now(),
	}))

	other := f.newOrg(t, "annan")
	_, err = f.svc.CreatePage(f.member(t, other.ID, authorization.RoleAdmin), other.ID, domain.PageInput{Title: "Bryggan annan"})
	require.NoError(t, err)

	results, err := f.svc.Search(ctx, f.org.ID, "BRYGG")
	require.NoError(t, err)

	counts := map[string]int{}
	for _, r := range results {
		counts[r.Type]++
		switch r.Type {
		case domain.ResultPost:
			assert.Contains(t, r.URL, "/p/")
			assert.NotNil(t, r.Date)
		case domain.ResultPage:
			assert.Equal(t, "/s/bryggregler", r.URL)
		case domain.ResultDocument:
			assert.Equal(t, "/dokument/1/b.pdf", r.URL)
			assert.True(t, r.External)
		}
	}
	assert.Equal(t, map[string]int{domain.ResultPost: 3, domain.ResultPage: 1, domain.ResultDocument: 1}, counts)

	empty, err := f.svc.Search(ctx, f.org.ID, "  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
