package domain

import "errors"

var (
	ErrMissingFields       = errors.New("missing_fields")
	ErrInvalidTime         = errors.New("invalid_time")
	ErrEndBeforeStart      = errors.New("end_before_start")
	ErrInvalidRange        = errors.New("invalid_range")
	ErrInvalidResourceName = errors.New("invalid_resource_name")
	ErrSlotTaken           = errors.New("slot_taken")
	ErrBusy                = errors.New("booking_busy")
	ErrResourceNotFound    = errors.New("resource_not_found")
	ErrBookingNotFound     = errors.New("booking_not_found")
)
