// Package verify реализует HTTP-обработчик проверки PIN.
//
// Проверка сама ничего не изменяет: дашборд вызывает её перед тем,
// как открыть защищённый диалог. Неверный PIN допускает повтор,
// число попыток не ограничивается.
package verify

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

// Handler управляет HTTP-запросами на проверку PIN.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики проверки PIN.
type Service interface {
	Verify(ctx context.Context, ownerUID, candidate string) error
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
// @Summary Проверить PIN
// @Description Сравнивает дайджест кандидата с эталоном. Не изменяет данные.
// @Tags Pin
// @Accept  json
// @Produce  json
// @Param request body models.DummyPinVerify true "PIN для проверки"
// @Success 200 {object} response.Response "PIN верен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Неверный PIN или PIN не настроен"
// @Failure 422 {object} response.ErrorResponse "Некорректный формат PIN"
// @Router /pin/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pin.verify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPinVerify
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

	if err := h.service.Verify(r.Context(), uid, req.Pin); err != nil {
		switch {
		case errors.Is(err, pincode.ErrInvalidFormat):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(pincode.ErrInvalidFormat.Error()))
		case errors.Is(err, pin.ErrNotConfigured):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("pin is not configured"))
		case errors.Is(err, pin.ErrIncorrectPin):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("incorrect pin"))
		default:
			log.Error("failed to verify pin", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not verify pin"))
		}
		return
	}

	render.JSON(w, r, response.OK())
}
