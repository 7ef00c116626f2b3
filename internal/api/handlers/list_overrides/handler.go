package list_overrides

import (
	"errors"
	"net/http"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
	"github.com/m04kA/SPA-BookingService/internal/api/middleware"
	"github.com/m04kA/SPA-BookingService/internal/service/overrides"
	"github.com/m04kA/SPA-BookingService/internal/service/overrides/models"
)

const (
	msgInvalidEmployeeID = "некорректный ID мастера"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgForbidden         = "просматривать переопределения может только персонал"
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

// Handle GET /api/v1/employees/{employeeId}/overrides
// Query params: from, to (YYYY-MM-DD, optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	employeeID, err := handlers.PathID(r, "employeeId")
	if err != nil {
		h.logger.Warn("GET /employees/{id}/overrides - Invalid employee ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	from, err := handlers.QueryDate(r, "from")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	to, err := handlers.QueryDate(r, "to")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.List(r.Context(), actor, &models.ListOverridesRequest{
		EmployeeID: employeeID,
		From:       from,
		To:         to,
	})
	if err != nil {
		switch {
		case errors.Is(err, overrides.ErrAccessDenied):
			h.logger.Warn("GET /employees/{id}/overrides - Access denied: user_id=%d", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /employees/{id}/overrides - Failed to list overrides: employee_id=%d, error=%v", employeeID, err)
			handlers.RespondDomainError(w, err)
		}
		return
	}

	h.logger.Info("GET /employees/{id}/overrides - Overrides retrieved: employee_id=%d, count=%d",
		employeeID, len(result.Overrides))
	handlers.RespondJSON(w, http.StatusOK, result)
}
