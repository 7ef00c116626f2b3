package get_available_slots

import (
	"time"

	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// Request модель запроса на получение свободных слотов
type Request struct {
	EmployeeID int64     // ID мастера
	Date       time.Time // Дата (без времени)
	SlotLength *int      // Длина слота в минутах, nil = значение из конфигурации
}

// Response модель ответа со списком свободных слотов
type Response struct {
	EmployeeID int64
	Date       time.Time
	SlotLength int
	Slots      []Slot
}

// Slot свободный интервал [Start, End)
type Slot struct {
	Start types.TimeString
	End   types.TimeString
}
