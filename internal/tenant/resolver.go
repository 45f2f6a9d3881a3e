// Package tenant maps inbound hosts onto the admin area, the marketing site
// or an organization's public site.
package tenant

import (
	"net"
	"path"
	"strings"
)

type Action int

const (
	// Pass leaves the request untouched.
	Pass Action = iota
	// Rewrite serves the request from Decision.Path.
	Rewrite
	// Redirect sends the client to Decision.Path.
	Redirect
)

const (
	SitesPrefix     = "/sites"
	DashboardPrefix = "/dashboard"
)

// Decision is the outcome of resolving one request. Path and RawQuery are
// only meaningful for Rewrite and Redirect.
type Decision struct {
	Action    Action
	Path      string
	RawQuery  string
	Subdomain string
}

type Config struct {
	RootDomain     string
	AdminSubdomain string
	LandingPath    string
	LoginPath      string
}

var excludedPrefixes = []string{"/api/", "/webhooks/", "/_static/"}

var excludedExact = map[string]struct{}{
	"/api":      {},
	"/health":   {},
	"/metrics":  {},
	"/webhooks": {},
}

var authPaths = map[string]struct{}{
	"/login":  {},
	"/signup": {},
}

// Resolve is a pure function of its inputs and the config.
func Resolve(cfg Config, host, reqPath, rawQuery string, hasSession bool) Decision {
	if reqPath == "" {
		reqPath = "/"
	}
	if excluded(reqPath) {
		return Decision{Action: Pass}
	}

	root := strings.ToLower(strings.TrimSpace(cfg.RootDomain))
	host = normalizeHost(host, root)
	adminHost := cfg.AdminSubdomain + "." + root

	switch {
	case host == adminHost:
		return resolveAdmin(cfg, reqPath, rawQuery, hasSession)
	case host == root, host == "www."+root, host == "":
		return Decision{Action: Pass}
	}

	sub, _, _ := strings.Cut(host, ".")
	return Decision{
		Action:    Rewrite,
		Path:      SitesPrefix + "/" + sub + reqPath,
		RawQuery:  rawQuery,
		Subdomain: sub,
	}
}

func resolveAdmin(cfg Config, reqPath, rawQuery string, hasSession bool) Decision {
	login := cfg.LoginPath
	if login == "" {
		login = "/login"
	}
	landing := cfg.LandingPath
	if landing == "" {
		landing = DashboardPrefix
	}

	if _, ok := authPaths[reqPath]; ok || reqPath == login {
		return Decision{Action: Pass}
	}
	if !hasSession {
		return Decision{Action: Redirect, Path: login}
	}
	if reqPath == "/" {
		return Decision{Action: Redirect, Path: landing}
	}

	rest := strings.TrimPrefix(reqPath, DashboardPrefix)
	if rest != "" && !strings.HasPrefix(rest, "/") {
		// "/dashboards" is not under "/dashboard".
		rest = reqPath
	}
	return Decision{
		Action:   Rewrite,
		Path:     DashboardPrefix + rest,
		RawQuery: rawQuery,
	}
}

// normalizeHost lowercases, strips the port and maps *.localhost onto the
// configured root domain.
func normalizeHost(host, root string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if root != "localhost" {
		switch {
		case host == "localhost":
			host = root
		case strings.HasSuffix(host, ".localhost"):
			host = strings.TrimSuffix(host, ".localhost") + "." + root
		}
	}
	return host
}

func excluded(p string) bool {
	if _, ok := excludedExact[p]; ok {
		return true
	}
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return strings.Contains(path.Base(p), ".")
}
