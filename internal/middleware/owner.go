package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"todoTracker/internal/logger"

	"go.uber.org/zap"
)

// Заголовки выставляет шлюз аутентификации, значениям доверяем без проверки
const (
	OwnerHeader = "X-User-ID"
	RoleHeader  = "X-User-Role"
)

// Owner кладёт владельца и роль в контекст, без владельца запрос отклоняется с 401
func Owner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if owner == "" {
			logger.Warn("HTTP: Запрос без владельца",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("path", r.URL.Path))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"error":      "UNAUTHORIZED",
				"message":    "Требуется аутентификация",
				"request_id": GetRequestID(r.Context()),
			})
			return
		}

		ctx := context.WithValue(r.Context(), OwnerKey, owner)
		ctx = context.WithValue(ctx, RoleKey, strings.TrimSpace(r.Header.Get(RoleHeader)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetOwner(ctx context.Context) string {
	if owner, ok := ctx.Value(OwnerKey).(string); ok {
		return owner
	}
	return ""
}

func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(RoleKey).(string); ok {
		return role
	}
	return ""
}
