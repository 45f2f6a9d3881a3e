package domain

import (
	"context"
	"time"

	"github.com/andreasgmg/fornet/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreatePost(ctx context.Context, orgID snowflake.ID, req PostInput) (*Post, error)
	UpdatePost(ctx context.Context, postID snowflake.ID, req PostInput) (*Post, error)
	DeletePost(ctx context.Context, postID snowflake.ID) error
	GetPost(ctx context.Context, orgID, postID snowflake.ID) (*Post, error)
	ListPosts(ctx context.Context, orgID snowflake.ID, page pagination.Pagination) (*ListPostsResponse, error)

	CreatePage(ctx context.Context, orgID snowflake.ID, req PageInput) (*Page, error)
	UpdatePage(ctx context.Context, pageID snowflake.ID, req PageInput) (*Page, error)
	DeletePage(ctx context.Context, pageID snowflake.ID) error
	GetPageBySlug(ctx context.Context, orgID snowflake.ID, slug string) (*Page, error)
	ListPages(ctx context.Context, orgID snowflake.ID) ([]*Page, error)

	CreateEvent(ctx context.Context, orgID snowflake.ID, req EventInput) (*Event, error)
	DeleteEvent(ctx context.Context, eventID snowflake.ID) error
	ListUpcomingEvents(ctx context.Context, orgID snowflake.ID, from time.Time) ([]*Event, error)

	AddBoardMember(ctx context.Context, orgID snowflake.ID, req BoardMemberInput) (*BoardMember, error)
	DeleteBoardMember(ctx context.Context, memberID snowflake.ID) error
	ListBoardMembers(ctx context.Context, orgID snowflake.ID) ([]*BoardMember, error)

	AddSponsor(ctx context.Context, orgID snowflake.ID, req SponsorInput) (*Sponsor, error)
	DeleteSponsor(ctx context.Context, sponsorID snowflake.ID) error
	ListSponsors(ctx context.Context, orgID snowflake.ID) ([]*Sponsor, error)

	Search(ctx context.Context, orgID snowflake.ID, query string) ([]SearchResult, error)
}

type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type PageInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// EventInput.Date is YYYY-MM-DD with an optional Time of HH:MM, both local to
// the organization.
type EventInput struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

type BoardMemberInput struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type SponsorInput struct {
	Name       string `json:"name"`
	WebsiteURL string `json:"website_url"`
	LogoURL    string `json:"logo_url"`
}

type ListPostsResponse struct {
	Posts    []*Post              `json:"posts"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}
