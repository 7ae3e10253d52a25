package api

import (
	"net/http"
	"strings"

	"pointsbot/internal/auth"
)

type AdminAuthMiddleware struct {
	jwtService *auth.JWTService
}

func NewAdminAuthMiddleware(jwtService *auth.JWTService) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{jwtService: jwtService}
}

func (m *AdminAuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil || claims.Role != "admin" {
			unauthorized(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
