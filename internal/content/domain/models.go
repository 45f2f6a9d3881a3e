package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Post struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"org_id"`
	Title     string       `gorm:"type:text;not null" json:"title"`
	Content   string       `gorm:"type:text;not null;default:''" json:"content"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

// Page is a free-form page reachable at /s/{slug} on the tenant site.
type Page struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;uniqueIndex:ux_pages_org_slug,priority:1" json:"org_id"`
	Title     string       `gorm:"type:text;not null" json:"title"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_pages_org_slug,priority:2" json:"slug"`
	Content   string       `gorm:"type:text;not null;default:''" json:"content"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Page) TableName() string { return "pages" }

type Event struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"org_id"`
	Title       string       `gorm:"type:text;not null" json:"title"`
	StartsAt    time.Time    `gorm:"not null;index" json:"starts_at"`
	Description string       `gorm:"type:text;not null;default:''" json:"description"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
}

func (Event) TableName() string { return "events" }

type BoardMember struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"org_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Role      string       `gorm:"type:text;not null;default:''" json:"role"`
	Email     string       `gorm:"type:text;not null;default:''" json:"email"`
	Phone     string       `gorm:"type:text;not null;default:''" json:"phone"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (BoardMember) TableName() string { return "board_members" }

type Sponsor struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"not null;index" json:"org_id"`
	Name       string       `gorm:"type:text;not null" json:"name"`
	WebsiteURL string       `gorm:"type:text;not null;default:''" json:"website_url"`
	LogoURL    string       `gorm:"type:text;not null;default:''" json:"logo_url"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
}

func (Sponsor) TableName() string { return "sponsors" }

const (
	ResultPost     = "post"
	ResultPage     = "page"
	ResultDocument = "doc"
)

type SearchResult struct {
	Type     string     `json:"type"`
	Title    string     `json:"title"`
	URL      string     `json:"url"`
	Date     *time.Time `json:"date,omitempty"`
	External bool       `json:"external,omitempty"`
}
