package create_booking

import (
	"time"

	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID     int64            // ID клиента
	EmployeeID int64            // ID мастера
	ServiceID  int64            // ID услуги
	Date       time.Time        // Дата бронирования (без времени)
	StartTime  types.TimeString // Время начала (например, "10:00")
	Notes      *string          // Дополнительные заметки (опционально)
}

// Settings правила бронирования и таймаут транзакции
type Settings struct {
	MinNoticeMinutes   int
	AdvanceBookingDays int
	TxTimeout          time.Duration
}
