// Package domain contains the resource booking model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const ResourceTypeHourly = "hourly"

// Resource is something members book by the hour, such as a laundry room.
type Resource struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"org_id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Description string       `gorm:"type:text;not null;default:''" json:"description"`
	Type        string       `gorm:"type:text;not null" json:"type"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
}

func (Resource) TableName() string { return "resources" }

// Booking occupies the half-open interval [StartAt, EndAt) on a resource.
type Booking struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	ResourceID      snowflake.ID `gorm:"not null;index:ix_bookings_resource_start,priority:1" json:"resource_id"`
	OrgID           snowflake.ID `gorm:"not null;index" json:"org_id"`
	StartAt         time.Time    `gorm:"not null;index:ix_bookings_resource_start,priority:2" json:"start_at"`
	EndAt           time.Time    `gorm:"not null" json:"end_at"`
	UserName        string       `gorm:"type:text;not null" json:"user_name"`
	CancelTokenHash string       `gorm:"type:text;not null" json:"-"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
}

func (Booking) TableName() string { return "bookings" }

func (b Booking) Interval() Interval {
	return Interval{Start: b.StartAt, End: b.EndAt}
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two ranges share any instant. Ranges that only
// touch at an endpoint do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}

func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}
