// Package customer реализует HTTP-обработчики заказчиков арендатора.
package customer

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

// Handler управляет HTTP-запросами к заказчикам арендатора.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики заказчиков.
type Service interface {
	CreateCustomer(ctx context.Context, tenantUID string, req models.DummyCustomer) (int, error)
	ListCustomers(ctx context.Context, tenantUID string) ([]*models.Customer, error)
	RemoveCustomer(ctx context.Context, tenantUID string, id int) (int, error)
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
// @Summary Добавить заказчика
// @Tags Fleet
// @Accept  json
// @Produce  json
// @Param request body models.DummyCustomer true "Данные заказчика"
// @Success 200 {object} map[string]any "ID созданной записи"
// @Router /customers [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.customer.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCustomer
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

	id, err := h.service.CreateCustomer(r.Context(), tenantUID, req)
	if err != nil {
		log.Error("failed to create customer", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create customer"))
		return
	}

	log.Info("customer created", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"last_added_id": id,
	}))
}

// List godoc
// @Summary Список заказчиков
// @Tags Fleet
// @Produce  json
// @Success 200 {object} map[string]any "Заказчики арендатора"
// @Router /customers [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.customer.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tenantUID, ok := h.tenant(w, r, log)
	if !ok {
		return
	}

	customers, err := h.service.ListCustomers(r.Context(), tenantUID)
	if err != nil {
		log.Error("failed to list customers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list customers"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"customers": customers,
	}))
}

// Remove godoc
// @Summary Удалить заказчика
// @Tags Fleet
// @Produce  json
// @Param id path int true "ID заказчика"
// @Success 200 {object} map[string]any "Число удалённых записей"
// @Router /customers/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.customer.remove"
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

	count, err := h.service.RemoveCustomer(r.Context(), tenantUID, id)
	if err != nil {
		log.Error("failed to remove customer", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove customer"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted_count": count,
	}))
}
