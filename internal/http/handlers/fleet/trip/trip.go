// Package trip реализует HTTP-обработчики рейсов арендатора.
// Статус рейса меняется отдельной операцией, а не общим обновлением.
package trip

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

// Handler управляет HTTP-запросами к рейсам арендатора.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики рейсов.
type Service interface {
	CreateTrip(ctx context.Context, tenantUID string, req models.DummyTrip) (int, error)
	ListTrips(ctx context.Context, tenantUID string) ([]*models.Trip, error)
	UpdateTripStatus(ctx context.Context, tenantUID string, id int, status string) (int, error)
	RemoveTrip(ctx context.Context, tenantUID string, id int) (int, error)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled ongoing completed cancelled"`
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
// @Summary Создать рейс
// @Tags Fleet
// @Accept  json
// @Produce  json
// @Param request body models.DummyTrip true "Данные рейса, дата в формате 02-01-2006"
// @Success 200 {object} map[string]any "ID созданной записи"
// @Router /trips [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.trip.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyTrip
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

	id, err := h.service.CreateTrip(r.Context(), tenantUID, req)
	if err != nil {
		log.Error("failed to create trip", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("could not create trip"))
		return
	}

	log.Info("trip created", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"last_added_id": id,
	}))
}

// List godoc
// @Summary Список рейсов
// @Tags Fleet
// @Produce  json
// @Success 200 {object} map[string]any "Рейсы арендатора"
// @Router /trips [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.trip.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tenantUID, ok := h.tenant(w, r, log)
	if !ok {
		return
	}

	trips, err := h.service.ListTrips(r.Context(), tenantUID)
	if err != nil {
		log.Error("failed to list trips", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list trips"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"trips": trips,
	}))
}

// UpdateStatus godoc
// @Summary Сменить статус рейса
// @Tags Fleet
// @Accept  json
// @Produce  json
// @Param id path int true "ID рейса"
// @Param request body statusRequest true "Новый статус"
// @Success 200 {object} map[string]any "Число обновлённых записей"
// @Router /trips/{id}/status [put]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.trip.updatestatus"
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

	var req statusRequest
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

	count, err := h.service.UpdateTripStatus(r.Context(), tenantUID, id, req.Status)
	if err != nil {
		log.Error("failed to update trip status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update trip status"))
		return
	}

	log.Info("trip status updated", slog.Int("id", id), slog.String("status", req.Status))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"updated_count": count,
	}))
}

// Remove godoc
// @Summary Удалить рейс
// @Tags Fleet
// @Produce  json
// @Param id path int true "ID рейса"
// @Success 200 {object} map[string]any "Число удалённых записей"
// @Router /trips/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.trip.remove"
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

	count, err := h.service.RemoveTrip(r.Context(), tenantUID, id)
	if err != nil {
		log.Error("failed to remove trip", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove trip"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted_count": count,
	}))
}
