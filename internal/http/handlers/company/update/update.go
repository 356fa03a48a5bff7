// Package update реализует HTTP-обработчик редактирования профиля компании.
// Операция чувствительная: перед записью проверяется PIN пользователя.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fleet-control/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-control/internal/http/pingate"
	"github.com/magabrotheeeer/fleet-control/internal/http/response"
	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// Handler управляет HTTP-запросами на обновление профиля компании.
type Handler struct {
	log      *slog.Logger
	gate     pingate.Gate
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс записи профиля компании.
type Service interface {
	UpdateCompanyProfile(ctx context.Context, userUID, name, city, mobile string) error
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
// @Summary Обновить профиль компании
// @Description Обновляет название, город и телефон компании после проверки PIN.
// @Tags Company
// @Accept  json
// @Produce  json
// @Param request body models.DummyCompanyProfile true "PIN и поля профиля"
// @Success 200 {object} response.Response "Профиль обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Неверный PIN или PIN не настроен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /company [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.company.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCompanyProfile
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

	if err := h.service.UpdateCompanyProfile(r.Context(), uid, req.CompanyName,
		req.CompanyCity, req.CompanyMobile); err != nil {
		log.Error("failed to update company profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update company profile"))
		return
	}

	log.Info("company profile updated", slog.String("uid", uid))
	render.JSON(w, r, response.OK())
}
