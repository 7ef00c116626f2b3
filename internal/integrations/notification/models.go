package notification

import (
	"time"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

// Message модель события о бронировании, уходящего в брокер
type Message struct {
	EventID       string    `json:"eventId"`
	Action        string    `json:"action"`
	ReservationID int64     `json:"reservationId"`
	UserID        int64     `json:"userId"`
	EmployeeID    int64     `json:"employeeId"`
	ServiceID     int64     `json:"serviceId"`
	EmployeeName  string    `json:"employeeName"`
	ServiceName   string    `json:"serviceName"`
	Date          string    `json:"date"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	Status        string    `json:"status"`
	Price         float64   `json:"price"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func newMessage(eventID string, event domain.ReservationEvent) Message {
	r := event.Reservation
	return Message{
		EventID:       eventID,
		Action:        string(event.Action),
		ReservationID: r.ID,
		UserID:        r.UserID,
		EmployeeID:    r.EmployeeID,
		ServiceID:     r.ServiceID,
		EmployeeName:  r.EmployeeName,
		ServiceName:   r.ServiceName,
		Date:          r.Date.Format(domain.DateFormat),
		StartTime:     r.StartTime.String(),
		EndTime:       r.EndTime.String(),
		Status:        string(r.Status),
		Price:         r.Price,
		OccurredAt:    event.OccurredAt,
	}
}
