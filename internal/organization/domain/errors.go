package domain

import "errors"

var (
	ErrNotFound          = errors.New("organization_not_found")
	ErrMemberNotFound    = errors.New("member_not_found")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidUser       = errors.New("invalid_user")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrInvalidRole       = errors.New("invalid_role")
	ErrInvalidAlertLevel = errors.New("invalid_alert_level")
	ErrInvalidSize       = errors.New("invalid_size")
	ErrSubdomainTooShort = errors.New("subdomain_too_short")
	ErrSubdomainReserved = errors.New("subdomain_reserved")
	ErrSubdomainTaken    = errors.New("subdomain_taken")
	ErrAlreadyInvited    = errors.New("already_invited")
	ErrCannotRemoveOwner = errors.New("cannot_remove_owner")
	ErrUnknownModule     = errors.New("unknown_module")
	ErrStorageFull       = errors.New("storage_full")
	ErrWrongSitePassword = errors.New("wrong_site_password")
	ErrProRequired       = errors.New("pro_required")
)
