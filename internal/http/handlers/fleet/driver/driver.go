// Package driver реализует HTTP-обработчики CRUD водителей арендатора.
package driver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fleet-control/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-control/internal/http/response"
	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// Handler управляет HTTP-запросами к водителям арендатора.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики водителей.
type Service interface {
	CreateDriver(ctx context.Context, tenantUID string, req models.DummyDriver) (int, error)
	ListDrivers(ctx context.Context, tenantUID string) ([]*models.Driver, error)
	UpdateDriver(ctx context.Context, tenantUID string, id int, req models.DummyDriver) (int, error)
	RemoveDriver(ctx context.Context, tenantUID string, id int) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) tenant(w http.ResponseWriter, r *http.Request, log *slog.Logger) (string, bool) {
	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return "", false
	}
	return uid, true
}

// Create godoc
// @Summary Добавить водителя
// @Tags Fleet
// @Accept  json
// @Produce  json
// @Param request body models.DummyDriver true "Данные водителя"
// @Success 200 {object} map[string]any "ID созданной записи"
// @Router /drivers [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.driver.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyDriver
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

	tenantUID, ok := h.tenant(w, r, log)
	if !ok {
		return
	}

	id, err := h.service.CreateDriver(r.Context(), tenantUID, req)
	if err != nil {
		log.Error("failed to create driver", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create driver"))
		return
	}

	log.Info("driver created", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"last_added_id": id,
	}))
}

// List godoc
// @Summary Список водителей
// @Tags Fleet
// @Produce  json
// @Success 200 {object} map[string]any "Водители арендатора"
// @Router /drivers [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.driver.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tenantUID, ok := h.tenant(w, r, log)
	if !ok {
		return
	}

	drivers, err := h.service.ListDrivers(r.Context(), tenantUID)
	if err != nil {
		log.Error("failed to list drivers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list drivers"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"drivers": drivers,
	}))
}

// Update godoc
// @Summary Обновить водителя
// @Tags Fleet
// @Accept  json
// @Produce  json
// @Param id path int true "ID водителя"
// @Param request body models.DummyDriver true "Данные водителя"
// @Success 200 {object} map[string]any "Число обновлённых записей"
// @Router /drivers/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.driver.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req models.DummyDriver
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

	tenantUID, ok := h.tenant(w, r, log)
	if !ok {
		return
	}

	count, err := h.service.UpdateDriver(r.Context(), tenantUID, id, req)
	if err != nil {
		log.Error("failed to update driver", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update driver"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"updated_count": count,
	}))
}

// Remove godoc
// @Summary Удалить водителя
// @Tags Fleet
// @Produce  json
// @Param id path int true "ID водителя"
// @Success 200 {object} map[string]any "Число удалённых записей"
// @Router /drivers/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.driver.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	tenantUID, ok := h.tenant(w, r, log)
	if !ok {
		return
	}

	count, err := h.service.RemoveDriver(r.Context(), tenantUID, id)
	if err != nil {
		log.Error("failed to remove driver", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove driver"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted_count": count,
	}))
}
