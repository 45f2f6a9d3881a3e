package domain

import (
	"strings"
	"time"
)

type OrgType string

const (
	TypeRoad  OrgType = "road"
	TypeBRF   OrgType = "brf"
	TypeBoat  OrgType = "boat"
	TypeCabin OrgType = "cabin"
	TypeHunt  OrgType = "hunt"
	TypeVenue OrgType = "venue"
	TypeOther OrgType = "other"
)

// ParseOrgType maps unknown input to TypeOther.
func ParseOrgType(raw string) OrgType {
	t := OrgType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := typeDefaults[t]; ok {
		return t
	}
	return TypeOther
}

// SiteConfig holds the feature flags and small texts of a tenant site.
type SiteConfig struct {
	ShowSnowStatus     bool       `json:"show_snow_status"`
	ShowDocuments      bool       `json:"show_documents"`
	ShowBoard          bool       `json:"show_board"`
	ShowContactWidget  bool       `json:"show_contact_widget"`
	ShowNews           bool       `json:"show_news"`
	ShowBooking        bool       `json:"show_booking"`
	ShowCalendarWidget bool       `json:"show_calendar_widget"`
	ShowBrokerInfo     bool       `json:"show_broker_info"`
	ShowWaterStatus    bool       `json:"show_water_status"`
	ShowMembershipForm bool       `json:"show_membership_form"`
	ShowWasteSorting   bool       `json:"show_waste_sorting"`
	ShowSwishWidget    bool       `json:"show_swish_widget"`
	ShowMapWidget      bool       `json:"show_map_widget"`
	ShowCalendarQLink  bool       `json:"show_calendar_qlink"`
	SnowStatusText     string     `json:"snow_status_text,omitempty"`
	SnowUpdatedAt      *time.Time `json:"snow_updated_at,omitempty"`
}

// ConfigPatch is a partial SiteConfig. Nil fields leave the base untouched.
type ConfigPatch struct {
	ShowSnowStatus     *bool      `json:"show_snow_status,omitempty"`
	ShowDocuments      *bool      `json:"show_documents,omitempty"`
	ShowBoard          *bool      `json:"show_board,omitempty"`
	ShowContactWidget  *bool      `json:"show_contact_widget,omitempty"`
	ShowNews           *bool      `json:"show_news,omitempty"`
	ShowBooking        *bool      `json:"show_booking,omitempty"`
	ShowCalendarWidget *bool      `json:"show_calendar_widget,omitempty"`
	ShowBrokerInfo     *bool      `json:"show_broker_info,omitempty"`
	ShowWaterStatus    *bool      `json:"show_water_status,omitempty"`
	ShowMembershipForm *bool      `json:"show_membership_form,omitempty"`
	ShowWasteSorting   *bool      `json:"show_waste_sorting,omitempty"`
	ShowSwishWidget    *bool      `json:"show_swish_widget,omitempty"`
	ShowMapWidget      *bool      `json:"show_map_widget,omitempty"`
	ShowCalendarQLink  *bool      `json:"show_calendar_qlink,omitempty"`
	SnowStatusText     *string    `json:"snow_status_text,omitempty"`
	SnowUpdatedAt      *time.Time `json:"snow_updated_at,omitempty"`
}

// Merge returns base with every set field of patch applied. Neither argument
// is modified.
func Merge(base SiteConfig, patch ConfigPatch) SiteConfig {
	out := base
	for _, field := range moduleFlags {
		if v := *field.patch(&patch); v != nil {
			*field.config(&out) = *v
		}
	}
	if patch.SnowStatusText != nil {
		out.SnowStatusText = *patch.SnowStatusText
	}
	if patch.SnowUpdatedAt != nil {
		out.SnowUpdatedAt = patch.SnowUpdatedAt
	}
	if out.SnowUpdatedAt != nil {
		t := *out.SnowUpdatedAt
		out.SnowUpdatedAt = &t
	}
	return out
}

// ModulePatch builds a patch toggling one module flag by its JSON key.
func ModulePatch(key string, enabled bool) (ConfigPatch, error) {
	field, ok := moduleFlags[strings.TrimSpace(key)]
	if !ok {
		return ConfigPatch{}, ErrUnknownModule
	}
	var patch ConfigPatch
	*field.patch(&patch) = &enabled
	return patch, nil
}

// ModuleKeys lists the toggleable flags.
func ModuleKeys() []string {
	keys := make([]string, 0, len(moduleFlags))
	for key := range moduleFlags {
		keys = append(keys, key)
	}
	return keys
}

type flagField struct {
	config func(*SiteConfig) *bool
	patch  func(*ConfigPatch) **bool
}

var moduleFlags = map[string]flagField{
	"show_snow_status": {
		func(c *SiteConfig) *bool { return &c.ShowSnowStatus },
		func(p *ConfigPatch) **bool { return &p.ShowSnowStatus },
	},
	"show_documents": {
		func(c *SiteConfig) *bool { return &c.ShowDocuments },
		func(p *ConfigPatch) **bool { return &p.ShowDocuments },
	},
	"show_board": {
		func(c *SiteConfig) *bool { return &c.ShowBoard },
		func(p *ConfigPatch) **bool { return &p.ShowBoard },
	},
	"show_contact_widget": {
		func(c *SiteConfig) *bool { return &c.ShowContactWidget },
		func(p *ConfigPatch) **bool { return &p.ShowContactWidget },
	},
	"show_news": {
		func(c *SiteConfig) *bool { return &c.ShowNews },
		func(p *ConfigPatch) **bool { return &p.ShowNews },
	},
	"show_booking": {
		func(c *SiteConfig) *bool { return &c.ShowBooking },
		func(p *ConfigPatch) **bool { return &p.ShowBooking },
	},
	"show_calendar_widget": {
		func(c *SiteConfig) *bool { return &c.ShowCalendarWidget },
		func(p *ConfigPatch) **bool { return &p.ShowCalendarWidget },
	},
	"show_broker_info": {
		func(c *SiteConfig) *bool { return &c.ShowBrokerInfo },
		func(p *ConfigPatch) **bool { return &p.ShowBrokerInfo },
	},
	"show_water_status": {
		func(c *SiteConfig) *bool { return &c.ShowWaterStatus },
		func(p *ConfigPatch) **bool { return &p.ShowWaterStatus },
	},
	"show_membership_form": {
		func(c *SiteConfig) *bool { return &c.ShowMembershipForm },
		func(p *ConfigPatch) **bool { return &p.ShowMembershipForm },
	},
	"show_waste_sorting": {
		func(c *SiteConfig) *bool { return &c.ShowWasteSorting },
		func(p *ConfigPatch) **bool { return &p.ShowWasteSorting },
	},
	"show_swish_widget": {
		func(c *SiteConfig) *bool { return &c.ShowSwishWidget },
		func(p *ConfigPatch) **bool { return &p.ShowSwishWidget },
	},
	"show_map_widget": {
		func(c *SiteConfig) *bool { return &c.ShowMapWidget },
		func(p *ConfigPatch) **bool { return &p.ShowMapWidget },
	},
	"show_calendar_qlink": {
		func(c *SiteConfig) *bool { return &c.ShowCalendarQLink },
		func(p *ConfigPatch) **bool { return &p.ShowCalendarQLink },
	},
}

func on() *bool  { v := true; return &v }
func off() *bool { v := false; return &v }

func text(s string) *string { return &s }

// typeDefaults is read-only. DefaultsFor hands out copies.
var typeDefaults = map[OrgType]func() ConfigPatch{
	TypeRoad: func() ConfigPatch {
		return ConfigPatch{
			ShowSnowStatus:    on(),
			ShowDocuments:     on(),
			ShowBoard:         on(),
			ShowContactWidget: on(),
			ShowNews:          on(),
		}
	},
	TypeBRF: func() ConfigPatch {
		return ConfigPatch{
			ShowBooking:        on(),
			ShowDocuments:      on(),
			ShowBoard:          on(),
			ShowCalendarWidget: on(),
			ShowContactWidget:  on(),
			ShowBrokerInfo:     on(),
			ShowNews:           on(),
		}
	},
	TypeBoat: func() ConfigPatch {
		return ConfigPatch{
			ShowBooking:        on(),
			ShowCalendarWidget: on(),
			ShowWaterStatus:    on(),
			ShowContactWidget:  on(),
			ShowBoard:          on(),
			ShowNews:           on(),
		}
	},
	TypeCabin: func() ConfigPatch {
		return ConfigPatch{
			ShowWaterStatus:    on(),
			ShowCalendarWidget: on(),
			ShowDocuments:      on(),
			ShowContactWidget:  on(),
			ShowBoard:          on(),
			ShowNews:           on(),
		}
	},
	TypeHunt: func() ConfigPatch {
		return ConfigPatch{
			ShowCalendarWidget: on(),
			ShowNews:           on(),
			ShowDocuments:      on(),
			ShowBoard:          off(),
			ShowContactWidget:  off(),
			ShowMembershipForm: on(),
			ShowSnowStatus:     on(),
			SnowStatusText:     text("Ingen jakt"),
		}
	},
	TypeVenue: func() ConfigPatch {
		return ConfigPatch{
			ShowBooking:        on(),
			ShowCalendarWidget: on(),
			ShowContactWidget:  on(),
			ShowNews:           on(),
		}
	},
	TypeOther: func() ConfigPatch {
		return ConfigPatch{
			ShowDocuments:     on(),
			ShowContactWidget: on(),
			ShowNews:          on(),
		}
	},
}

// DefaultsFor returns a fresh copy of the defaults for t. Unknown types get
// the defaults of TypeOther.
func DefaultsFor(t OrgType) ConfigPatch {
	build, ok := typeDefaults[t]
	if !ok {
		build = typeDefaults[TypeOther]
	}
	return build()
}

// InitialConfig is the config of a newly created organization of type t.
func InitialConfig(t OrgType) SiteConfig {
	return Merge(SiteConfig{ShowNews: true}, DefaultsFor(t))
}
