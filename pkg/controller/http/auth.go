package http

import (
	"context"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
)

// NewAuthMiddleware returns a middleware that validates bearer tokens on API
// routes against the given JWKS endpoint
func NewAuthMiddleware(ctx context.Context, jwksURL, issuer, audience string) (func(http.Handler) http.Handler, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, goerr.Wrap(err, "failed to register JWKS endpoint", goerr.V("url", jwksURL))
	}
	// Fail fast on an unreachable or malformed key set
	if _, err := cache.Refresh(ctx, jwksURL); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch JWKS", goerr.V("url", jwksURL))
	}

	keySet := jwk.NewCachedSet(cache, jwksURL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parseOpts := []jwt.ParseOption{
				jwt.WithKeySet(keySet),
				jwt.WithValidate(true),
			}
			if issuer != "" {
				parseOpts = append(parseOpts, jwt.WithIssuer(issuer))
			}
			if audience != "" {
				parseOpts = append(parseOpts, jwt.WithAudience(audience))
			}

			if _, err := jwt.ParseRequest(r, parseOpts...); err != nil {
				writeError(w, goerr.Wrap(err, "invalid or missing token"), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}
