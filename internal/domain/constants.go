package domain

// Default configuration values
const (
	DefaultSlotDurationMinutes = 30
)

// Business validation constants
const (
	MaxSlotDurationMinutes      = 480 // 8 hours
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxOverrideReasonLength     = 255
)

// DateFormat формат даты в API и в ключах кэша
const DateFormat = "2006-01-02" // YYYY-MM-DD

// ActiveStatuses статусы, которые занимают время мастера
var ActiveStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
}
