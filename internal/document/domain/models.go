// Package domain holds document metadata. File bytes live outside fornet;
// a document only records where its file is and how much quota it uses.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound      = errors.New("document_not_found")
	ErrMissingFields = errors.New("document_missing_fields")
	ErrInvalidSize   = errors.New("document_invalid_size")
)

type Document struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"org_id"`
	Title     string       `gorm:"type:text;not null" json:"title"`
	FileName  string       `gorm:"type:text;not null" json:"file_name"`
	Size      int64        `gorm:"not null" json:"size"`
	URL       string       `gorm:"type:text;not null" json:"url"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (Document) TableName() string { return "documents" }

type Service interface {
	Upload(ctx context.Context, orgID snowflake.ID, req UploadRequest) (*Document, error)
	Delete(ctx context.Context, documentID snowflake.ID) error
	List(ctx context.Context, orgID snowflake.ID) ([]*Document, error)
}

type UploadRequest struct {
	Title    string `json:"title"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}
