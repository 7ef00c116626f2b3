package get_available_slots

import (
	"strconv"
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SPA-BookingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	EmployeeID int64           `json:"employeeId"`
	Date       string          `json:"date"`
	SlotLength int             `json:"slotLength"`
	Slots      []AvailableSlot `json:"slots"`
}

// AvailableSlot свободный интервал [start, end)
type AvailableSlot struct {
	Start string `json:"start"` // "10:00"
	End   string `json:"end"`   // "10:30"
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Start: slot.Start.String(),
			End:   slot.End.String(),
		}
	}

	return &AvailableSlotsResponse{
		EmployeeID: resp.EmployeeID,
		Date:       resp.Date.Format(domain.DateFormat),
		SlotLength: resp.SlotLength,
		Slots:      slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
// Пустой slotLength означает длину слота по умолчанию
func ToUseCaseRequest(employeeID int64, dateStr, slotLengthStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	req := &getAvailableSlots.Request{
		EmployeeID: employeeID,
		Date:       date,
	}

	if slotLengthStr != "" {
		slotLength, err := strconv.Atoi(slotLengthStr)
		if err != nil {
			return nil, err
		}
		req.SlotLength = &slotLength
	}

	return req, nil
}
