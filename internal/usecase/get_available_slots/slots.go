package get_available_slots

import (
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// computeFreeSlots считает свободные слоты мастера на дату:
// (базовый интервал ∪ открывающие переопределения) - блокировки - активные бронирования,
// затем режет результат на слоты фиксированной длины.
// Не зависит от текущего времени, поэтому результат можно кэшировать.
func computeFreeSlots(
	schedule domain.WorkSchedule,
	date time.Time,
	overrides []*domain.AvailabilityOverride,
	reservations []*domain.Reservation,
	slotLength int,
) ([]domain.Interval, error) {
	if slotLength <= 0 {
		return nil, ErrInvalidSlotLength
	}

	// Шаг 1-3: рабочее время с учетом переопределений
	working := domain.WorkingIntervals(schedule, date, overrides)
	if len(working) == 0 {
		return []domain.Interval{}, nil
	}

	// Шаг 4: вычитаем активные бронирования
	free := domain.SubtractAll(working, domain.ReservationIntervals(reservations, 0))

	// Шаг 5: квантование
	return quantize(free, slotLength), nil
}

// quantize режет свободные интервалы на слоты длиной slotLength от начала каждого интервала.
// Неполный хвостовой слот отбрасывается.
func quantize(free []domain.Interval, slotLength int) []domain.Interval {
	slots := make([]domain.Interval, 0)

	for _, interval := range free {
		start := interval.Start
		for start.Minutes()+slotLength <= interval.End.Minutes() {
			end, err := start.AddMinutes(slotLength)
			if err != nil {
				break
			}
			slots = append(slots, domain.Interval{Date: interval.Date, Start: start, End: end})
			start = end
		}
	}

	return slots
}

// filterNotBefore оставляет слоты, начинающиеся не раньше minStart
func filterNotBefore(slots []domain.Interval, minStart types.TimeString) []domain.Interval {
	result := make([]domain.Interval, 0, len(slots))
	for _, slot := range slots {
		if !slot.Start.IsBefore(minStart) {
			result = append(result, slot)
		}
	}
	return result
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня
func isDateInPast(date, now time.Time) bool {
	return domain.DateOnly(date).Before(domain.DateOnly(now))
}
