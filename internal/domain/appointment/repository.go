package appointment

import (
	"context"
)

type Repository interface {
	// Create assigns the next APT identifier and status Scheduled, then
	// inserts the appointment at the head of the collection.
	Create(ctx context.Context, a *Appointment) error

	// GetByID returns ErrAppointmentNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*Appointment, error)

	// Update runs mutate against the stored appointment atomically and
	// persists the result. Returns ErrAppointmentNotFound for unknown ids;
	// an error from mutate aborts the update and is returned unchanged.
	Update(ctx context.Context, id string, mutate func(a *Appointment) error) (*Appointment, error)

	// List returns matching appointments in collection order.
	List(ctx context.Context, q *ListAppointmentsQuery) ([]*Appointment, error)

	// Seed appends records after the existing ones, keeping their ids.
	// Ids already present are skipped; the number added is returned.
	Seed(ctx context.Context, items []*Appointment) (int, error)
}
