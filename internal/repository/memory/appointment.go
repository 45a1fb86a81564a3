package memory

import (
	"context"
	"time"

	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/internal/domain/appointment"
)

type AppointmentRepository struct {
	c *collection[appointment.Appointment]
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{
		c: newCollection(
			func(a *appointment.Appointment) string { return a.ID },
			shallowClone[appointment.Appointment],
		),
	}
}

func (r *AppointmentRepository) Create(_ context.Context, a *appointment.Appointment) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	now := time.Now().UTC()
	a.ID = domain.NextID(appointment.IDPrefix, r.c.ids())
	a.Status = appointment.StatusScheduled
	a.CreatedAt = now
	a.UpdatedAt = now
	r.c.prepend(a)
	return nil
}

func (r *AppointmentRepository) GetByID(_ context.Context, id string) (*appointment.Appointment, error) {
	a, ok := r.c.get(id)
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return a, nil
}

func (r *AppointmentRepository) Update(_ context.Context, id string, mutate func(*appointment.Appointment) error) (*appointment.Appointment, error) {
	return r.c.update(id, appointment.ErrAppointmentNotFound, func(a *appointment.Appointment) error {
		if err := mutate(a); err != nil {
			return err
		}
		a.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *AppointmentRepository) List(_ context.Context, q *appointment.ListAppointmentsQuery) ([]*appointment.Appointment, error) {
	return r.c.filter(func(a *appointment.Appointment) bool { return a.Matches(q) }), nil
}

func (r *AppointmentRepository) Seed(_ context.Context, items []*appointment.Appointment) (int, error) {
	return r.c.seed(items), nil
}
