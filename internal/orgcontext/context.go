// Package orgcontext carries the tenant site resolved for a public request.
package orgcontext

import (
	"context"

	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
)

type siteKey struct{}

// WithSite stores the organization whose site is being served.
func WithSite(ctx context.Context, org *orgdomain.Organization) context.Context {
	return context.WithValue(ctx, siteKey{}, org)
}

// SiteFromContext returns the organization stored by WithSite.
func SiteFromContext(ctx context.Context) (*orgdomain.Organization, bool) {
	if ctx == nil {
		return nil, false
	}
	org, ok := ctx.Value(siteKey{}).(*orgdomain.Organization)
	if !ok || org == nil || org.ID == 0 {
		return nil, false
	}
	return org, true
}

// OrgIDFromContext returns the ID of the site organization, if set.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	org, ok := SiteFromContext(ctx)
	if !ok {
		return 0, false
	}
	return org.ID, true
}
