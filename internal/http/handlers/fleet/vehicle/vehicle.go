// Package vehicle реализует HTTP-обработчики CRUD транспорта арендатора.
package vehicle

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

// Handler управляет HTTP-запросами к транспорту арендатора.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики транспорта.
type Service interface {
	CreateVehicle(ctx context.Context, tenantUID string, req models.DummyVehicle) (int, error)
	ListVehicles(ctx context.Context, tenantUID string) ([]*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, tenantUID string, id int, req models.DummyVehicle) (int, error)
	RemoveVehicle(ctx context.Context, tenantUID string, id int) (int, error)
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
// @Summary Добавить транспортное средство
// @Tags Fleet
// @Accept  json
// @Produce  json
// @Param request body models.DummyVehicle true "Данные транспорта"
// @Success 200 {object} map[string]any "ID созданной записи"
// @Router /vehicles [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.vehicle.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyVehicle
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

	id, err := h.service.CreateVehicle(r.Context(), tenantUID, req)
	if err != nil {
		log.Error("failed to create vehicle", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create vehicle"))
		return
	}

	log.Info("vehicle created", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"last_added_id": id,
	}))
}

// List godoc
// @Summary Список транспорта
// @Tags Fleet
// @Produce  json
// @Success 200 {object} map[string]any "Транспорт арендатора"
// @Router /vehicles [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.vehicle.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tenantUID, ok := h.tenant(w, r, log)
	if !ok {
		return
	}

	vehicles, err := h.service.ListVehicles(r.Context(), tenantUID)
	if err != nil {
		log.Error("failed to list vehicles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list vehicles"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"vehicles": vehicles,
	}))
}

// Update godoc
// @Summary Обновить транспортное средство
// @Tags Fleet
// @Accept  json
// @Produce  json
// @Param id path int true "ID транспорта"
// @Param request body models.DummyVehicle true "Данные транспорта"
// @Success 200 {object} map[string]any "Число обновлённых записей"
// @Router /vehicles/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.vehicle.update"
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

	var req models.DummyVehicle
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

	count, err := h.service.UpdateVehicle(r.Context(), tenantUID, id, req)
	if err != nil {
		log.Error("failed to update vehicle", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update vehicle"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"updated_count": count,
	}))
}

// Remove godoc
// @Summary Удалить транспортное средство
// @Tags Fleet
// @Produce  json
// @Param id path int true "ID транспорта"
// @Success 200 {object} map[string]any "Число удалённых записей"
// @Router /vehicles/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.vehicle.remove"
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

	count, err := h.service.RemoveVehicle(r.Context(), tenantUID, id)
	if err != nil {
		log.Error("failed to remove vehicle", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove vehicle"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted_count": count,
	}))
}
