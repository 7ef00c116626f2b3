package create_override

import (
	"errors"
	"net/http"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
	"github.com/m04kA/SPA-BookingService/internal/api/middleware"
	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/internal/service/overrides"
)

const (
	msgInvalidEmployeeID  = "некорректный ID мастера"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateTime    = "некорректный формат даты (YYYY-MM-DD) или времени (HH:MM)"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "создавать переопределения может только персонал"
	msgEmployeeNotFound   = "мастер не найден"
	msgOverrideConflict   = "интервал пересекается с переопределением противоположного типа"
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

// Handle POST /api/v1/employees/{employeeId}/overrides
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	employeeID, err := handlers.PathID(r, "employeeId")
	if err != nil {
		h.logger.Warn("POST /employees/{id}/overrides - Invalid employee ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateOverrideRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /employees/{id}/overrides - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.ValidateStruct(req); err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	serviceReq, err := req.ToServiceRequest(employeeID)
	if err != nil {
		h.logger.Warn("POST /employees/{id}/overrides - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.service.Create(r.Context(), actor, serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, overrides.ErrAccessDenied):
			h.logger.Warn("POST /employees/{id}/overrides - Access denied: user_id=%d", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, overrides.ErrEmployeeNotFound):
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, domain.ErrOverrideConflict):
			h.logger.Warn("POST /employees/{id}/overrides - Conflict: %v", err)
			handlers.RespondConflict(w, msgOverrideConflict)

		default:
			h.logger.Error("POST /employees/{id}/overrides - Failed to create override: employee_id=%d, error=%v", employeeID, err)
			handlers.RespondDomainError(w, err)
		}
		return
	}

	h.logger.Info("POST /employees/{id}/overrides - Override created: override_id=%d, employee_id=%d, available=%t",
		result.ID, employeeID, result.Available)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
