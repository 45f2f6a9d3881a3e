package cache

import (
	"strings"
	"time"

	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"go.uber.org/fx"
)

const defaultSiteTTL = 30 * time.Second

var Module = fx.Module("cache",
	fx.Provide(NewSiteCache),
)

// SiteCache stores organizations by subdomain for the public site hot path.
// Writers must call Invalidate after changing an organization.
type SiteCache interface {
	Get(subdomain string) (orgdomain.Organization, bool)
	Set(org orgdomain.Organization)
	Invalidate(subdomain string)
}

type siteCache struct {
	orgs Cache[string, orgdomain.Organization]
	ttl  time.Duration
}

func NewSiteCache() SiteCache {
	return &siteCache{
		orgs: NewTTLCache[string, orgdomain.Organization](),
		ttl:  defaultSiteTTL,
	}
}

func (c *siteCache) Get(subdomain string) (orgdomain.Organization, bool) {
	return c.orgs.Get(cacheKey(subdomain))
}

func (c *siteCache) Set(org orgdomain.Organization) {
	if org.ID == 0 {
		return
	}
	c.orgs.Set(cacheKey(org.Subdomain), org, c.ttl)
}

func (c *siteCache) Invalidate(subdomain string) {
	c.orgs.Delete(cacheKey(subdomain))
}

func cacheKey(subdomain string) string {
	return strings.ToLower(strings.TrimSpace(subdomain))
}
