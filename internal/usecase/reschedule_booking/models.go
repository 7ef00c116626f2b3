package reschedule_booking

import (
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// Request модель запроса на перенос бронирования
type Request struct {
	ReservationID int64
	Actor         domain.Actor
	Date          time.Time        // Новая дата
	StartTime     types.TimeString // Новое время начала, длительность сохраняется
}

// Settings правила бронирования и таймаут транзакции
type Settings struct {
	MinNoticeMinutes   int
	AdvanceBookingDays int
	TxTimeout          time.Duration
}
