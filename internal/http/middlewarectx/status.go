package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fleet-control/internal/http/response"
	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// Evaluator описывает guard-функцию жизненного цикла подписки.
type Evaluator interface {
	Evaluate(ctx context.Context, u *models.User, now time.Time) (string, error)
}

// UserLoader загружает пользователя по UID.
type UserLoader interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// SubscriptionStatusMiddleware прогоняет guard-функцию жизненного цикла
// на каждом аутентифицированном запросе и кладёт актуальный статус в контекст.
// Запись в хранилище происходит только при смене статуса.
func SubscriptionStatusMiddleware(log *slog.Logger, users UserLoader, evaluator Evaluator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := r.Context().Value(UserUID).(string)
			if !ok || uid == "" {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			user, err := users.GetUser(r.Context(), uid)
			if err != nil {
				log.Error("failed to load user", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("could not load user"))
				return
			}

			status, err := evaluator.Evaluate(r.Context(), user, time.Now().UTC())
			if err != nil {
				// Ошибка записи перехода не блокирует запрос: статус
				// пересчитается на следующем заходе.
				log.Warn("subscription evaluation failed", sl.Err(err))
				status = user.SubscriptionStatus
			}

			ctx := context.WithValue(r.Context(), SubscriptionStatus, status)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePaidAccess блокирует рабочие разделы дашборда, когда подписка
// ждёт оплаты. Конечные точки PIN и заявок на оплату этим не оборачиваются.
func RequirePaidAccess(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			status, _ := r.Context().Value(SubscriptionStatus).(string)
			if status == models.StatusPendingPayment {
				uid, _ := r.Context().Value(UserUID).(string)
				log.Info("access blocked until payment", slog.String("uid", uid))
				w.WriteHeader(http.StatusPaymentRequired)
				render.JSON(w, r, response.Error("subscription payment required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin пропускает только пользователей с ролью admin.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(Role).(string)
			if role != models.RoleAdmin {
				log.Error("admin role required")
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
