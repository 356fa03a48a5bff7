// Package pingate содержит общую проверку PIN для обработчиков
// чувствительных действий: единое сопоставление ошибок проверки
// HTTP-статусам и ответам.
package pingate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fleet-control/internal/http/response"
	"github.com/magabrotheeeer/fleet-control/internal/lib/pincode"
	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/services/pin"
)

// Gate описывает проверку PIN перед защищённым действием.
type Gate interface {
	Verify(ctx context.Context, ownerUID, candidate string) error
}

// Check проверяет PIN пользователя и при ошибке пишет ответ сам.
// Возвращает true, если проверка пройдена и обработчик может продолжать.
func Check(w http.ResponseWriter, r *http.Request, log *slog.Logger, gate Gate, ownerUID, candidate string) bool {
	err := gate.Verify(r.Context(), ownerUID, candidate)
	if err == nil {
		return true
	}

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
	return false
}
