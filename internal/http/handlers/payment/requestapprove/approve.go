// Package requestapprove реализует HTTP-обработчик одобрения заявки на оплату.
//
// Действие администратора, защищённое PIN. Одобрение активирует подписку
// арендатора до записи статуса заявки; при сбое активации заявка остаётся pending.
package requestapprove

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fleet-control/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-control/internal/http/pingate"
	"github.com/magabrotheeeer/fleet-control/internal/http/response"
	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
	"github.com/magabrotheeeer/fleet-control/internal/services/paymentrequest"
)

// Handler управляет HTTP-запросами на одобрение заявки.
type Handler struct {
	log      *slog.Logger
	gate     pingate.Gate
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики одобрения заявки.
type Service interface {
	Approve(ctx context.Context, id, processorEmail string, now time.Time) error
}

// New создает новый Handler с переданными логгером, PIN-гейтом и сервисом.
func New(log *slog.Logger, gate pingate.Gate, service Service) *Handler {
	return &Handler{
		log:      log,
		gate:     gate,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Одобрить заявку на оплату
// @Description Активирует подписку арендатора и помечает заявку approved. Требует PIN администратора.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор заявки"
// @Param request body models.DummyRequestDecision true "PIN администратора"
// @Success 200 {object} response.Response "Заявка одобрена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Неверный PIN или PIN не настроен"
// @Failure 409 {object} response.ErrorResponse "Заявка уже рассмотрена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера или активации"
// @Router /payments/requests/{id}/approve [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.requestapprove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("failed to decode id from url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req models.DummyRequestDecision
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	email, _ := r.Context().Value(middlewarectx.Email).(string)
	if !ok || uid == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if !pingate.Check(w, r, log, h.gate, uid, req.Pin) {
		return
	}

	if err := h.service.Approve(r.Context(), id, email, time.Now().UTC()); err != nil {
		switch {
		case errors.Is(err, paymentrequest.ErrNotPending):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("payment request is not pending"))
		case errors.Is(err, paymentrequest.ErrActivationFailed):
			log.Error("activation failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("subscription activation failed"))
		default:
			log.Error("failed to approve payment request", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not approve payment request"))
		}
		return
	}

	log.Info("payment request approved", slog.String("id", id))
	render.JSON(w, r, response.OK())
}
