// Package siteaccess issues and checks the signed cookies that unlock
// password-protected tenant sites.
package siteaccess

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andreasgmg/fornet/internal/clock"
	"github.com/andreasgmg/fornet/internal/config"
	orgdomain "github.com/andreasgmg/fornet/internal/organization/domain"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	CookiePrefix = "access_"
	TokenTTL     = 30 * 24 * time.Hour
	issuer       = "fornet"
)

var ErrInvalidToken = errors.New("invalid_site_access_token")

var Module = fx.Module("site.access",
	fx.Provide(New),
)

// CookieName is the per-site cookie holding the access token.
func CookieName(subdomain string) string {
	return CookiePrefix + strings.ToLower(strings.TrimSpace(subdomain))
}

type Grant struct {
	Token     string
	ExpiresAt time.Time
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Orgs   orgdomain.Service
	Clock  clock.Clock
}

type Service struct {
	orgs   orgdomain.Service
	clock  clock.Clock
	secret []byte
	log    *zap.Logger
}

// claims bind a token to one organization and to the site password it was
// issued under. Changing or clearing the password changes the fingerprint.
type claims struct {
	OrgID    string `json:"org_id"`
	Password string `json:"pwv"`
	jwt.RegisteredClaims
}

func New(p Params) (*Service, error) {
	log := p.Log.Named("siteaccess.service")
	secret := []byte(p.Config.SiteAccessSecret)
	if len(secret) == 0 {
		if p.Config.IsProduction() {
			return nil, errors.New("SITE_ACCESS_SECRET is required in production")
		}
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		log.Warn("SITE_ACCESS_SECRET not set, using an ephemeral key")
	}
	return &Service{orgs: p.Orgs, clock: p.Clock, secret: secret, log: log}, nil
}

// Verify checks the site password and returns a grant for the site. Sites
// without a password are granted without a check.
func (s *Service) Verify(ctx context.Context, subdomain, attempt string) (*Grant, error) {
	org, err := s.orgs.CheckSitePassword(ctx, subdomain, attempt)
	if err != nil {
		return nil, err
	}
	return s.issue(org)
}

func (s *Service) issue(org *orgdomain.Organization) (*Grant, error) {
	now := s.clock.Now()
	expires := now.Add(TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		OrgID:    org.ID.String(),
		Password: s.fingerprint(org),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   org.Subdomain,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign site access token: %w", err)
	}
	return &Grant{Token: signed, ExpiresAt: expires}, nil
}

// Validate reports whether token grants access to org's site.
func (s *Service) Validate(org *orgdomain.Organization, token string) error {
	if org == nil || strings.TrimSpace(token) == "" {
		return ErrInvalidToken
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(strings.ToLower(strings.TrimSpace(org.Subdomain))),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return ErrInvalidToken
	}
	if c.OrgID != org.ID.String() {
		return ErrInvalidToken
	}
	if !hmac.Equal([]byte(c.Password), []byte(s.fingerprint(org))) {
		return ErrInvalidToken
	}
	return nil
}

// fingerprint is a keyed digest of the stored password hash. The hash itself
// never leaves the server.
func (s *Service) fingerprint(org *orgdomain.Organization) string {
	if org.SitePasswordHash == nil {
		return ""
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(*org.SitePasswordHash))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16])
}
