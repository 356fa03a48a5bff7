// Package requestlist реализует HTTP-обработчик списка заявок для администратора.
package requestlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fleet-control/internal/http/response"
	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// Handler управляет HTTP-запросами на список заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения заявок с пагинацией.
type Service interface {
	List(ctx context.Context, limit, offset int) ([]*models.PaymentRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список заявок на оплату
// @Description Возвращает заявки всех арендаторов, новые первыми. Только для администратора.
// @Tags Payments
// @Produce  json
// @Param limit query int false "Размер страницы" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} map[string]any "Список заявок"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/requests [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.requestlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	requests, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list payment requests", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list payment requests"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"requests": requests,
	}))
}
