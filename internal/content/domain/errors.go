package domain

import "errors"

var (
	ErrNotFound       = errors.New("content_not_found")
	ErrTitleRequired  = errors.New("title_required")
	ErrNameRequired   = errors.New("name_required")
	ErrInvalidSlug    = errors.New("invalid_slug")
	ErrSlugTaken      = errors.New("slug_taken")
	ErrInvalidDate    = errors.New("invalid_date")
	ErrInvalidWebsite = errors.New("invalid_website")
)
