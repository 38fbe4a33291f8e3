package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/auth"
	domainerrors "github.com/listenupapp/catalog-server/internal/errors"
	"github.com/listenupapp/catalog-server/internal/http/response"
	"github.com/listenupapp/catalog-server/internal/service"
	"github.com/listenupapp/catalog-server/internal/sse"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	claimsKey   ctxKey = "claims"
	clientIPKey ctxKey = "clientIP"
)

// GetClaims returns the verified token claims from context.
// Returns 401 error if user is not authenticated.
func GetClaims(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, huma.Error401Unauthorized("Authentication required")
	}
	return claims, nil
}

func setClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// RequireUser returns the authenticated username.
func RequireUser(ctx context.Context) (string, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

// RequireAdmin validates the user is authenticated and has admin role.
// Returns the username if successful, error otherwise.
func RequireAdmin(ctx context.Context) (string, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return "", err
	}
	if !claims.IsAdmin() {
		return "", domainerrors.Forbidden("Admin access required")
	}
	return claims.Username, nil
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// authMiddleware returns a middleware that validates Bearer tokens and stores
// the claims in context. If no token is present or it is invalid, the
// request continues anonymously and handlers reject it if auth is required.
func authMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" || authService == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setClaims(r.Context(), claims)))
		})
	}
}

// handleEvents authenticates the stream and hands it to the SSE handler.
// EventSource cannot set headers, so a ?token= query parameter is accepted
// here as well.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if _, err := GetClaims(r.Context()); err != nil {
		token := r.URL.Query().Get("token")
		if token == "" {
			response.Unauthorized(w, "Authentication required", s.logger)
			return
		}
		claims, err := s.services.Auth.Authenticate(r.Context(), token)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		r = r.WithContext(setClaims(r.Context(), claims))
	}
	s.sseHandler.ServeHTTP(w, r)
}

// streamIdentity reads the caller installed by handleEvents.
func streamIdentity(r *http.Request) (sse.Identity, bool) {
	claims, err := GetClaims(r.Context())
	if err != nil {
		return sse.Identity{}, false
	}
	return sse.Identity{Username: claims.Username, IsAdmin: claims.IsAdmin()}, true
}
