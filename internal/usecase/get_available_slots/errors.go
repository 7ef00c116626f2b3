package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

var (
	// ErrEmployeeNotFound возвращается, когда мастер не найден или неактивен
	ErrEmployeeNotFound = fmt.Errorf("%w: get_available_slots: employee not found", domain.ErrNotFound)

	// ErrInvalidSlotLength возвращается при неположительной или слишком большой длине слота
	ErrInvalidSlotLength = fmt.Errorf("%w: get_available_slots: invalid slot length", domain.ErrInvalidArgument)

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = fmt.Errorf("%w: get_available_slots: date is too far in the future", domain.ErrInvalidArgument)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: get_available_slots: invalid input data", domain.ErrInvalidArgument)

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = fmt.Errorf("%w: get_available_slots: internal error", domain.ErrStorage)
)
