// Package requestremove реализует HTTP-обработчик удаления заявки на оплату.
// Действие администратора, защищённое PIN; допустимо из любого статуса.
package requestremove

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fleet-control/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-control/internal/http/pingate"
	"github.com/magabrotheeeer/fleet-control/internal/http/response"
	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// Handler управляет HTTP-запросами на удаление заявки.
type Handler struct {
	log      *slog.Logger
	gate     pingate.Gate
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики удаления заявки.
type Service interface {
	Delete(ctx context.Context, id string) (int, error)
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
// @Summary Удалить заявку на оплату
// @Description Удаляет заявку независимо от статуса. Требует PIN администратора.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор заявки"
// @Param request body models.DummyRequestDecision true "PIN администратора"
// @Success 200 {object} map[string]any "Число удалённых записей"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Неверный PIN или PIN не настроен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/requests/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.requestremove"
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
	if !ok || uid == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if !pingate.Check(w, r, log, h.gate, uid, req.Pin) {
		return
	}

	count, err := h.service.Delete(r.Context(), id)
	if err != nil {
		log.Error("failed to delete payment request", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete payment request"))
		return
	}

	log.Info("payment request deleted", slog.String("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted_count": count,
	}))
}
