package reschedule_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
	"github.com/m04kA/SPA-BookingService/internal/api/middleware"
	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/internal/service/reservations/models"
	rescheduleBooking "github.com/m04kA/SPA-BookingService/internal/usecase/reschedule_booking"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDateTime      = "некорректный формат даты (YYYY-MM-DD) или времени (HH:MM)"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgNotActive            = "перенести можно только активное бронирование"
	msgSlotNotAvailable     = "выбранный интервал уже занят"
	msgEmployeeOff          = "мастер не работает в выбранный интервал"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/reservations/{reservationId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := handlers.PathID(r, "reservationId")
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id}/reschedule - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /reservations/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.ValidateStruct(req); err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(reservationID, actor)
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id}/reschedule - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleBooking.ErrReservationNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleBooking.ErrAccessDenied):
			h.logger.Warn("PATCH /reservations/{id}/reschedule - Access denied: reservation_id=%d, user_id=%d",
				reservationID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, domain.ErrNotActive):
			handlers.RespondConflict(w, msgNotActive)

		case errors.Is(err, rescheduleBooking.ErrSlotNotAvailable):
			h.logger.Warn("PATCH /reservations/{id}/reschedule - Slot not available: reservation_id=%d", reservationID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, domain.ErrEmployeeUnavailable):
			handlers.RespondConflict(w, msgEmployeeOff)

		default:
			h.logger.Error("PATCH /reservations/{id}/reschedule - Failed to reschedule: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondDomainError(w, err)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/reschedule - Reservation moved: reservation_id=%d, date=%s, start=%s",
		reservationID, req.Date, req.StartTime)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainReservation(result))
}
