package reschedule_booking

import (
	"fmt"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = fmt.Errorf("%w: reschedule_booking: reservation not found", domain.ErrNotFound)

	// ErrEmployeeNotFound возвращается, когда мастер бронирования удалён или деактивирован
	ErrEmployeeNotFound = fmt.Errorf("%w: reschedule_booking: employee not found", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда переносит не владелец и не персонал
	ErrAccessDenied = fmt.Errorf("%w: reschedule_booking: only the owner or staff can reschedule", domain.ErrForbidden)

	// ErrSlotNotAvailable возвращается, когда новый интервал пересекается с другим бронированием
	ErrSlotNotAvailable = fmt.Errorf("%w: reschedule_booking: employee unavailable in that interval", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: reschedule_booking: invalid input data", domain.ErrInvalidArgument)

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = fmt.Errorf("%w: reschedule_booking: internal error", domain.ErrStorage)
)
