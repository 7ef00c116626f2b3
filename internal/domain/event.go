package domain

import "time"

// ReservationAction type of change published to the notification sink
type ReservationAction string

const (
	ActionCreated       ReservationAction = "reservation.created"
	ActionRescheduled   ReservationAction = "reservation.rescheduled"
	ActionStatusChanged ReservationAction = "reservation.status_changed"
	ActionCancelled     ReservationAction = "reservation.cancelled"
)

// ReservationEvent is emitted after a successful commit. Delivery is best-effort.
type ReservationEvent struct {
	Action      ReservationAction
	Reservation Reservation
	OccurredAt  time.Time
}

// NewReservationEvent copies the reservation so later mutations do not leak into the event
func NewReservationEvent(action ReservationAction, r *Reservation, now time.Time) ReservationEvent {
	return ReservationEvent{
		Action:      action,
		Reservation: *r,
		OccurredAt:  now,
	}
}
