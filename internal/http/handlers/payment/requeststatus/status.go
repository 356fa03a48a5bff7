// Package requeststatus реализует HTTP-обработчик чтения текущего статуса
// заявки арендатора. Показывается только самая свежая заявка.
package requeststatus

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fleet-control/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-control/internal/http/response"
	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// Handler управляет HTTP-запросами на чтение текущего статуса заявки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения самой свежей заявки арендатора.
type Service interface {
	Latest(ctx context.Context, requesterUID string) (*models.PaymentRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущий статус заявки
// @Description Возвращает самую свежую заявку арендатора; старые не показываются.
// @Tags Payments
// @Produce  json
// @Success 200 {object} map[string]any "Текущая заявка или null"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/requests/current [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.requeststatus"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	req, err := h.service.Latest(r.Context(), uid)
	if err != nil {
		log.Error("failed to read latest payment request", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read payment request"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"request": req,
	}))
}
