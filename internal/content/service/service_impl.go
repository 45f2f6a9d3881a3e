package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/andreasgmg/fornet/internal/authorization"
	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/content/domain"
	docdomain "github.com/andreasgmg/fornet/internal/document/domain"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/andreasgmg/fornet/pkg/db"
	"github.com/andreasgmg/fornet/pkg/db/option"
	"github.com/andreasgmg/fornet/pkg/db/pagination"
	"github.com/andreasgmg/fornet/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	searchLimit     = 3
	defaultPageSize = 10
	maxPageSize     = 250
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Posts     repository.Repository[domain.Post]
	Pages     repository.Repository[domain.Page]
	Events    repository.Repository[domain.Event]
	Board     repository.Repository[domain.BoardMember]
	Sponsors  repository.Repository[domain.Sponsor]
	Documents repository.Repository[docdomain.Document]
	Orgs      orgdomain.Repository
	Guard     authorization.Guard
	GenID     *snowflake.Node
	Clock     clock.Clock
}

type service struct {
	log       *zap.Logger
	posts     repository.Repository[domain.Post]
	pages     repository.Repository[domain.Page]
	events    repository.Repository[domain.Event]
	board     repository.Repository[domain.BoardMember]
	sponsors  repository.Repository[domain.Sponsor]
	documents repository.Repository[docdomain.Document]
	orgs      orgdomain.Repository
	guard     authorization.Guard
	genID     *snowflake.Node
	clock     clock.Clock
}

func NewService(p Params) domain.Service {
	return &service{
		log:       p.Log.Named("content.service"),
		posts:     p.Posts,
		pages:     p.Pages,
		events:    p.Events,
		board:     p.Board,
		sponsors:  p.Sponsors,
		documents: p.Documents,
		orgs:      p.Orgs,
		guard:     p.Guard,
		genID:     p.GenID,
		clock:     p.Clock,
	}
}

// --- posts ---

func (s *service) CreatePost(ctx context.Context, orgID snowflake.ID, req domain.PostInput) (*domain.Post, error) {
	if _, err := s.guard.RequireOrgAdmin(ctx, orgID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	now := s.clock.Now()
	post := &domain.Post{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Title:     title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *service) UpdatePost(ctx context.Context, postID snowflake.ID, req domain.PostInput) (*domain.Post, error) {
	post, err := getOwned(ctx, s.posts, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, post.OrgID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	post.Title = title
	post.Content = req.Content
	post.UpdatedAt = s.clock.Now()
	err = s.posts.Update(ctx, post.ID, map[string]any{
		"title":      post.Title,
		"content":    post.Content,
		"updated_at": post.UpdatedAt,
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return post, nil
}

func (s *service) DeletePost(ctx context.Context, postID snowflake.ID) error {
	post, err := getOwned(ctx, s.posts, postID)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, post.OrgID); err != nil {
		return err
	}
	return mapNotFound(s.posts.Delete(ctx, post.ID))
}

func (s *service) GetPost(ctx context.Context, orgID, postID snowflake.ID) (*domain.Post, error) {
	post, err := getOwned(ctx, s.posts, postID)
	if err != nil {
		return nil, err
	}
	if post.OrgID != orgID {
		return nil, domain.ErrNotFound
	}
	return post, nil
}

// ListPosts pages through posts newest first. The page token is an opaque
// cursor over the post id.
func (s *service) ListPosts(ctx context.Context, orgID snowflake.ID, page pagination.Pagination) (*domain.ListPostsResponse, error) {
	size := page.Size(defaultPageSize, maxPageSize)

	opts := []option.QueryOption{
		option.ApplyOrder("id", true),
		option.ApplyLimit(size + 1),
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		after, err := cursor.SnowflakeID()
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.ApplyWhere("id < ?", after))
	}

	posts, err := s.posts.Find(ctx, &domain.Post{OrgID: orgID}, opts...)
	if err != nil {
		return nil, err
	}

	info := pagination.BuildCursorPageInfo(posts, int32(size), func(p *domain.Post) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: p.ID.String()})
		return token
	})
	if len(posts) > size {
		posts = posts[:size]
	}
	return &domain.ListPostsResponse{Posts: posts, PageInfo: info}, nil
}

// --- pages ---

func (s *service) CreatePage(ctx context.Context, orgID snowflake.ID, req domain.PageInput) (*domain.Page, error) {
	if _, err := s.guard.RequireOrgAdmin(ctx, orgID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}
	slug := domain.PageSlug(title)
	if strings.Trim(slug, "-") == "" {
		return nil, domain.ErrInvalidSlug
	}

	now := s.clock.Now()
	page := &domain.Page{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Title:     title,
		Slug:      slug,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.pages.Create(ctx, page); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}
	return page, nil
}

// UpdatePage changes title and content. The slug is fixed at creation so
// existing links keep working.
func (s *service) UpdatePage(ctx context.Context, pageID snowflake.ID, req domain.PageInput) (*domain.Page, error) {
	page, err := getOwned(ctx, s.pages, pageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, page.OrgID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	page.Title = title
	page.Content = req.Content
	page.UpdatedAt = s.clock.Now()
	err = s.pages.Update(ctx, page.ID, map[string]any{
		"title":      page.Title,
		"content":    page.Content,
		"updated_at": page.UpdatedAt,
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return page, nil
}

func (s *service) DeletePage(ctx context.Context, pageID snowflake.ID) error {
	page, err := getOwned(ctx, s.pages, pageID)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, page.OrgID); err != nil {
		return err
	}
	return mapNotFound(s.pages.Delete(ctx, page.ID))
}

func (s *service) GetPageBySlug(ctx context.Context, orgID snowflake.ID, slug string) (*domain.Page, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	page, err := s.pages.FindOne(ctx, &domain.Page{OrgID: orgID, Slug: slug})
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, domain.ErrNotFound
	}
	return page, nil
}

func (s *service) ListPages(ctx context.Context, orgID snowflake.ID) ([]*domain.Page, error) {
	return s.pages.Find(ctx, &domain.Page{OrgID: orgID}, option.ApplyOrder("title", false))
}

// --- events ---

func (s *service) CreateEvent(ctx context.Context, orgID snowflake.ID, req domain.EventInput) (*domain.Event, error) {
	if _, err := s.guard.RequireOrgAdmin(ctx, orgID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	startsAt, err := parseEventTime(req.Date, req.Time, org.Location())
	if err != nil {
		return nil, err
	}

	event := &domain.Event{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		Title:       title,
		StartsAt:    startsAt,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) DeleteEvent(ctx context.Context, eventID snowflake.ID) error {
	event, err := getOwned(ctx, s.events, eventID)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, event.OrgID); err != nil {
		return err
	}
	return mapNotFound(s.events.Delete(ctx, event.ID))
}

func (s *service) ListUpcomingEvents(ctx context.Context, orgID snowflake.ID, from time.Time) ([]*domain.Event, error) {
	return s.events.Find(ctx, &domain.Event{OrgID: orgID},
		option.ApplyWhere("starts_at >= ?", from.UTC()),
		option.ApplyOrder("starts_at", false),
	)
}

// --- board ---

func (s *service) AddBoardMember(ctx context.Context, orgID snowflake.ID, req domain.BoardMemberInput) (*domain.BoardMember, error) {
	if _, err := s.guard.RequireOrgAdmin(ctx, orgID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	member := &domain.BoardMember{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Name:      name,
		Role:      strings.TrimSpace(req.Role),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		CreatedAt: s.clock.Now(),
	}
	if err := s.board.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *service) DeleteBoardMember(ctx context.Context, memberID snowflake.ID) error {
	member, err := getOwned(ctx, s.board, memberID)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, member.OrgID); err != nil {
		return err
	}
	return mapNotFound(s.board.Delete(ctx, member.ID))
}

func (s *service) ListBoardMembers(ctx context.Context, orgID snowflake.ID) ([]*domain.BoardMember, error) {
	return s.board.Find(ctx, &domain.BoardMember{OrgID: orgID}, option.ApplyOrder("created_at", false))
}

// --- sponsors ---

func (s *service) AddSponsor(ctx context.Context, orgID snowflake.ID, req domain.SponsorInput) (*domain.Sponsor, error) {
	if _, err := s.guard.RequireOrgAdmin(ctx, orgID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	website, err := domain.NormalizeWebsite(req.WebsiteURL)
	if err != nil {
		return nil, err
	}

	sponsor := &domain.Sponsor{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		Name:       name,
		WebsiteURL: website,
		LogoURL:    strings.TrimSpace(req.LogoURL),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.sponsors.Create(ctx, sponsor); err != nil {
		return nil, err
	}
	return sponsor, nil
}

func (s *service) DeleteSponsor(ctx context.Context, sponsorID snowflake.ID) error {
	sponsor, err := getOwned(ctx, s.sponsors, sponsorID)
	if err != nil {
		return err
	}
	if _, err := s.guard.RequireOrgAdmin(ctx, sponsor.OrgID); err != nil {
		return err
	}
	return mapNotFound(s.sponsors.Delete(ctx, sponsor.ID))
}

func (s *service) ListSponsors(ctx context.Context, orgID snowflake.ID) ([]*domain.Sponsor, error) {
	return s.sponsors.Find(ctx, &domain.Sponsor{OrgID: orgID}, option.ApplyOrder("name", false))
}

// --- search ---

// Search matches titles of posts, pages and documents, at most three of each.
func (s *service) Search(ctx context.Context, orgID snowflake.ID, query string) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	opts := []option.QueryOption{
		option.ApplyTitleContains(query),
		option.ApplyOrder("created_at", true),
		option.ApplyLimit(searchLimit),
	}

	posts, err := s.posts.Find(ctx, &domain.Post{OrgID: orgID}, opts...)
	if err != nil {
		return nil, err
	}
	pages, err := s.pages.Find(ctx, &domain.Page{OrgID: orgID}, opts...)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.Find(ctx, &docdomain.Document{OrgID: orgID}, opts...)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(posts)+len(pages)+len(docs))
	for _, p := range posts {
		created := p.CreatedAt
		results = append(results, domain.SearchResult{
			Type:  domain.ResultPost,
			Title: p.Title,
			URL:   "/p/" + p.ID.String(),
			Date:  &created,
		})
	}
	for _, p := range pages {
		results = append(results, domain.SearchResult{
			Type:  domain.ResultPage,
			Title: p.Title,
			URL:   "/s/" + p.Slug,
		})
	}
	for _, d := range docs {
		results = append(results, domain.SearchResult{
			Type:     domain.ResultDocument,
			Title:    d.Title,
			URL:      d.URL,
			External: true,
		})
	}
	return results, nil
}

func getOwned[T any](ctx context.Context, repo repository.Repository[T], id snowflake.ID) (*T, error) {
	item, err := repo.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return item, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func parseEventTime(date, clockTime string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clockTime = strings.TrimSpace(clockTime)
	if date == "" {
		return time.Time{}, domain.ErrInvalidDate
	}

	layout, value := "2006-01-02", date
	if clockTime != "" {
		layout, value = "2006-01-02 15:04", date+" "+clockTime
	}
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return t.UTC(), nil
}
