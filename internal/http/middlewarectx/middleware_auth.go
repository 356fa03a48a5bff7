// Package middlewarectx содержит HTTP middleware приложения:
// проверку JWT, вычисление статуса подписки и ограничение частоты запросов.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке
// Authorization и добавляет в контекст данные пользователя для обработчиков.
// В случае ошибки проверки возвращает HTTP 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fleet-control/internal/http/response"
	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID — ключ для идентификатора пользователя в контексте.
	UserUID Key = "user_uid"
	// Email — ключ для почты пользователя в контексте.
	Email Key = "email"
	// Role — ключ для роли пользователя в контексте.
	Role Key = "role"
	// SubscriptionStatus — ключ для статуса подписки в контексте.
	SubscriptionStatus Key = "subscription_status"
)

// TokenValidator описывает сервис для валидации JWT токена.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// JWTMiddleware проверяет JWT и кладёт uid, email и роль пользователя в контекст.
func JWTMiddleware(validator TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := log.With(slog.String("request_id", middleware.GetReqID(r.Context())))

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				reqLog.Error("missing bearer token")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			user, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				reqLog.Error("invalid token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			ctx := context.WithValue(r.Context(), UserUID, user.UUID)
			ctx = context.WithValue(ctx, Email, user.Email)
			ctx = context.WithValue(ctx, Role, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
