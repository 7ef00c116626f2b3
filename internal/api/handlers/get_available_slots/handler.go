package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SPA-BookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidEmployeeID  = "некорректный ID мастера"
	msgMissingDate        = "дата обязательна"
	msgInvalidQuery       = "некорректный формат даты (YYYY-MM-DD) или длины слота"
	msgEmployeeNotFound   = "мастер не найден"
	msgInvalidSlotLength  = "длина слота должна быть от 1 до 480 минут"
	msgDateTooFarInFuture = "дата слишком далеко в будущем"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/employees/{employeeId}/available-slots
// Query params: date (required, YYYY-MM-DD), slotLength (optional, minutes)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	employeeID, err := handlers.PathID(r, "employeeId")
	if err != nil {
		h.logger.Warn("GET /employees/{id}/available-slots - Invalid employee ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /employees/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(employeeID, dateStr, r.URL.Query().Get("slotLength"))
	if err != nil {
		h.logger.Warn("GET /employees/{id}/available-slots - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrEmployeeNotFound):
			h.logger.Warn("GET /employees/{id}/available-slots - Employee not found: employee_id=%d", employeeID)
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidSlotLength):
			h.logger.Warn("GET /employees/{id}/available-slots - Invalid slot length: employee_id=%d", employeeID)
			handlers.RespondBadRequest(w, msgInvalidSlotLength)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			h.logger.Warn("GET /employees/{id}/available-slots - Date too far in future: employee_id=%d", employeeID)
			handlers.RespondBadRequest(w, msgDateTooFarInFuture)

		default:
			h.logger.Error("GET /employees/{id}/available-slots - Failed to get slots: employee_id=%d, error=%v",
				employeeID, err)
			handlers.RespondDomainError(w, err)
		}
		return
	}

	h.logger.Info("GET /employees/{id}/available-slots - Slots retrieved successfully: employee_id=%d, date=%s, slots_count=%d",
		employeeID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
