package reservations

import (
	"fmt"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = fmt.Errorf("%w: reservations: reservation not found", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = fmt.Errorf("%w: reservations: access denied", domain.ErrForbidden)

	// ErrCannotCancel возвращается, когда бронирование уже завершено или отменено
	ErrCannotCancel = fmt.Errorf("%w: reservations: reservation cannot be cancelled", domain.ErrConflict)

	// ErrStatusChanged возвращается, когда статус изменился между чтением и обновлением
	ErrStatusChanged = fmt.Errorf("%w: reservations: reservation status changed concurrently", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: reservations: invalid input data", domain.ErrInvalidArgument)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("%w: reservations: internal error", domain.ErrStorage)
)
