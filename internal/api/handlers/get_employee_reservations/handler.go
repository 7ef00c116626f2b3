package get_employee_reservations

import (
	"errors"
	"net/http"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
	"github.com/m04kA/SPA-BookingService/internal/api/middleware"
	"github.com/m04kA/SPA-BookingService/internal/service/reservations"
)

const (
	msgInvalidEmployeeID = "некорректный ID мастера"
	msgInvalidFilter     = "некорректные параметры фильтрации"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgForbidden         = "просматривать бронирования мастера может только персонал"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/employees/{employeeId}/reservations
// Query params: startDate, endDate, status, includeInactive
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	employeeID, err := handlers.PathID(r, "employeeId")
	if err != nil {
		h.logger.Warn("GET /employees/{id}/reservations - Invalid employee ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req, err := ParseFilter(r, employeeID)
	if err != nil {
		h.logger.Warn("GET /employees/{id}/reservations - Invalid filter: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFilter)
		return
	}

	result, err := h.service.ListByEmployee(r.Context(), actor, req)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("GET /employees/{id}/reservations - Access denied: user_id=%d", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /employees/{id}/reservations - Failed to list reservations: employee_id=%d, error=%v",
				employeeID, err)
			handlers.RespondDomainError(w, err)
		}
		return
	}

	h.logger.Info("GET /employees/{id}/reservations - Reservations retrieved: employee_id=%d, count=%d",
		employeeID, len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result)
}
