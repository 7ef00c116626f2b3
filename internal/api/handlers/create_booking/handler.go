package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
	"github.com/m04kA/SPA-BookingService/internal/api/middleware"
	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/internal/service/reservations/models"
	createBooking "github.com/m04kA/SPA-BookingService/internal/usecase/create_booking"
)

const (
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateTime    = "некорректный формат даты (YYYY-MM-DD) или времени (HH:MM)"
	msgSlotNotAvailable   = "выбранный интервал уже занят"
	msgEmployeeOff        = "мастер не работает в выбранный интервал"
	msgEmployeeNotFound   = "мастер не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgDateInPast         = "дата бронирования в прошлом"
	msgDateTooFar         = "дата бронирования слишком далеко в будущем"
	msgTooLateToBook      = "слишком поздно для бронирования этого времени"
	msgPastEndOfDay       = "бронирование должно закончиться до 24:00"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.ValidateStruct(req); err != nil {
		h.logger.Warn("POST /reservations - Validation failed: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actor.UserID)
	if err != nil {
		h.logger.Warn("POST /reservations - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /reservations - Slot not available: user_id=%d, employee_id=%d", actor.UserID, req.EmployeeID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, domain.ErrEmployeeUnavailable):
			h.logger.Warn("POST /reservations - Employee unavailable: user_id=%d, employee_id=%d", actor.UserID, req.EmployeeID)
			handlers.RespondConflict(w, msgEmployeeOff)

		case errors.Is(err, createBooking.ErrEmployeeNotFound):
			h.logger.Warn("POST /reservations - Employee not found: employee_id=%d", req.EmployeeID)
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /reservations - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, domain.ErrDateInPast):
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, domain.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, domain.ErrTooLateToBook):
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, domain.ErrPastEndOfDay):
			handlers.RespondBadRequest(w, msgPastEndOfDay)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: user_id=%d, employee_id=%d, error=%v",
				actor.UserID, req.EmployeeID, err)
			handlers.RespondDomainError(w, err)
		}
		return
	}

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%d, user_id=%d, employee_id=%d",
		result.ID, actor.UserID, req.EmployeeID)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainReservation(result))
}
