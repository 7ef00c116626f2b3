package overrides

import (
	"fmt"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

var (
	// ErrOverrideNotFound возвращается, когда переопределение не найдено
	ErrOverrideNotFound = fmt.Errorf("%w: overrides: override not found", domain.ErrNotFound)

	// ErrEmployeeNotFound возвращается, когда мастер не найден
	ErrEmployeeNotFound = fmt.Errorf("%w: overrides: employee not found", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда пользователь не является сотрудником
	ErrAccessDenied = fmt.Errorf("%w: overrides: access denied", domain.ErrForbidden)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: overrides: invalid input data", domain.ErrInvalidArgument)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("%w: overrides: internal error", domain.ErrStorage)
)
