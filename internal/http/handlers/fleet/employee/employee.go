// Package employee реализует HTTP-обработчики сотрудников команды арендатора.
// Добавление и удаление сотрудника защищено проверкой PIN владельца.
package employee

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
	"github.com/magabrotheeeer/fleet-control/internal/http/pingate"
	"github.com/magabrotheeeer/fleet-control/internal/http/response"
	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// Handler управляет HTTP-запросами к сотрудникам арендатора.
type Handler struct {
	log      *slog.Logger
	gate     pingate.Gate
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики сотрудников.
type Service interface {
	CreateEmployee(ctx context.Context, tenantUID string, req models.DummyEmployee) (int, error)
	ListEmployees(ctx context.Context, tenantUID string) ([]*models.Employee, error)
	RemoveEmployee(ctx context.Context, tenantUID string, id int) (int, error)
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
// @Summary Добавить сотрудника
// @Description Добавляет сотрудника в команду арендатора. Требует PIN владельца.
// @Tags Fleet
// @Accept  json
// @Produce  json
// @Param request body models.DummyEmployee true "Данные сотрудника и PIN"
// @Success 200 {object} map[string]any "ID созданной записи"
// @Failure 403 {object} response.ErrorResponse "Неверный PIN или PIN не настроен"
// @Router /employees [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.employee.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyEmployee
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

	if !pingate.Check(w, r, log, h.gate, tenantUID, req.Pin) {
		return
	}

	id, err := h.service.CreateEmployee(r.Context(), tenantUID, req)
	if err != nil {
		log.Error("failed to create employee", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create employee"))
		return
	}

	log.Info("employee created", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"last_added_id": id,
	}))
}

// List godoc
// @Summary Список сотрудников
// @Tags Fleet
// @Produce  json
// @Success 200 {object} map[string]any "Сотрудники арендатора"
// @Router /employees [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.employee.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tenantUID, ok := h.tenant(w, r, log)
	if !ok {
		return
	}

	employees, err := h.service.ListEmployees(r.Context(), tenantUID)
	if err != nil {
		log.Error("failed to list employees", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list employees"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"employees": employees,
	}))
}

// Remove godoc
// @Summary Удалить сотрудника
// @Description Удаляет сотрудника из команды арендатора. Требует PIN владельца.
// @Tags Fleet
// @Accept  json
// @Produce  json
// @Param id path int true "ID сотрудника"
// @Param request body models.DummyRequestDecision true "PIN владельца"
// @Success 200 {object} map[string]any "Число удалённых записей"
// @Failure 403 {object} response.ErrorResponse "Неверный PIN или PIN не настроен"
// @Router /employees/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fleet.employee.remove"
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

	tenantUID, ok := h.tenant(w, r, log)
	if !ok {
		return
	}

	if !pingate.Check(w, r, log, h.gate, tenantUID, req.Pin) {
		return
	}

	count, err := h.service.RemoveEmployee(r.Context(), tenantUID, id)
	if err != nil {
		log.Error("failed to remove employee", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove employee"))
		return
	}

	log.Info("employee removed", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted_count": count,
	}))
}
