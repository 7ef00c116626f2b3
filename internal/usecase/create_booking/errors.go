package create_booking

import (
	"fmt"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена или отключена
	ErrServiceNotFound = fmt.Errorf("%w: create_booking: service not found", domain.ErrNotFound)

	// ErrEmployeeNotFound возвращается, когда мастер не найден или неактивен
	ErrEmployeeNotFound = fmt.Errorf("%w: create_booking: employee not found", domain.ErrNotFound)

	// ErrSlotNotAvailable возвращается, когда интервал пересекается с активным бронированием
	ErrSlotNotAvailable = fmt.Errorf("%w: create_booking: employee unavailable in that interval", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: create_booking: invalid input data", domain.ErrInvalidArgument)

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = fmt.Errorf("%w: create_booking: internal error", domain.ErrStorage)
)
