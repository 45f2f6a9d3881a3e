package tenant

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// SessionProbe reports whether a request carries a session. It must not hit
// the database.
type SessionProbe func(r *http.Request) bool

// ConfigSource returns the current resolver config; tenancy settings can
// change at runtime.
type ConfigSource func() Config

type originalPathKey struct{}

// OriginalPath returns the path a rewritten request arrived with.
func OriginalPath(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(originalPathKey{}).(string)
	return p, ok
}

// Handler rewrites or redirects requests before they reach next.
func Handler(next http.Handler, source ConfigSource, hasSession SessionProbe, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := Resolve(source(), r.Host, r.URL.Path, r.URL.RawQuery, hasSession(r))

		switch decision.Action {
		case Redirect:
			http.Redirect(w, r, decision.Path, http.StatusFound)
			return
		case Rewrite:
			if log != nil {
				log.Debug("tenant rewrite",
					zap.String("host", r.Host),
					zap.String("from", r.URL.Path),
					zap.String("to", decision.Path),
				)
			}
			r2 := r.Clone(context.WithValue(r.Context(), originalPathKey{}, r.URL.Path))
			r2.URL.Path = decision.Path
			r2.URL.RawPath = ""
			r2.URL.RawQuery = decision.RawQuery
			r2.RequestURI = r2.URL.RequestURI()
			next.ServeHTTP(w, r2)
			return
		default:
			next.ServeHTTP(w, r)
		}
	})
}
