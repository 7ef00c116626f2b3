package delete_override

import (
	"errors"
	"net/http"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
	"github.com/m04kA/SPA-BookingService/internal/api/middleware"
	"github.com/m04kA/SPA-BookingService/internal/service/overrides"
)

const (
	msgInvalidOverrideID = "некорректный ID переопределения"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgForbidden         = "удалять переопределения может только персонал"
	msgNotFound          = "переопределение не найдено"
)

type Handler struct {
	service OverrideService
	logger  Logger
}

func NewHandler(service OverrideService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/overrides/{overrideId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	overrideID, err := handlers.PathID(r, "overrideId")
	if err != nil {
		h.logger.Warn("DELETE /overrides/{id} - Invalid override ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOverrideID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.Delete(r.Context(), actor, overrideID); err != nil {
		switch {
		case errors.Is(err, overrides.ErrAccessDenied):
			h.logger.Warn("DELETE /overrides/{id} - Access denied: user_id=%d", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, overrides.ErrOverrideNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("DELETE /overrides/{id} - Failed to delete override: override_id=%d, error=%v", overrideID, err)
			handlers.RespondDomainError(w, err)
		}
		return
	}

	h.logger.Info("DELETE /overrides/{id} - Override deleted: override_id=%d, user_id=%d", overrideID, actor.UserID)
	w.WriteHeader(http.StatusNoContent)
}
