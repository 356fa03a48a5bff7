// Package setup реализует HTTP-обработчик установки PIN.
//
// Клиент присылает ввод и подтверждение одним запросом после двухшагового
// диалога; несовпадение возвращает его на шаг подтверждения, ошибка формата —
// на шаг ввода. Ничего не сохраняется до успешного совпадения.
package setup

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fleet-control/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-control/internal/http/response"
	"github.com/magabrotheeeer/fleet-control/internal/lib/pincode"
	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
	"github.com/magabrotheeeer/fleet-control/internal/services/pin"
)

// Handler управляет HTTP-запросами на установку PIN.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики установки PIN.
type Service interface {
	Setup(ctx context.Context, ownerUID, ownerEmail, pin, confirm string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Установить PIN
// @Description Сохраняет дайджест нового 4-значного PIN, перезаписывая прежний.
// @Tags Pin
// @Accept  json
// @Produce  json
// @Param request body models.DummyPinSetup true "PIN и подтверждение"
// @Success 200 {object} response.Response "PIN установлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Подтверждение не совпало"
// @Failure 422 {object} response.ErrorResponse "Некорректный формат PIN"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /pin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pin.setup"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPinSetup
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

	if err := h.service.Setup(r.Context(), uid, email, req.Pin, req.Confirm); err != nil {
		switch {
		case errors.Is(err, pincode.ErrInvalidFormat):
			log.Info("invalid pin format")
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(pincode.ErrInvalidFormat.Error()))
		case errors.Is(err, pin.ErrMismatch):
			log.Info("pin confirmation mismatch")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("pin confirmation does not match"))
		default:
			log.Error("failed to setup pin", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not setup pin"))
		}
		return
	}

	log.Info("pin configured", slog.String("uid", uid))
	render.JSON(w, r, response.OK())
}
