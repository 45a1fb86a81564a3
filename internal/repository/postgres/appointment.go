package postgres

import (
	"context"
	"fmt"

	"github.com/eyualpha/HealthLink/internal/domain/appointment"
	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTable(tx, "appointments"); err != nil {
			return err
		}
		id, pos, err := nextIdentity(tx, "appointments", appointment.IDPrefix)
		if err != nil {
			return err
		}
		a.ID = id
		a.Position = pos
		a.Status = appointment.StatusScheduled
		if err := tx.Create(a).Error; err != nil {
			return fmt.Errorf("inserting appointment: %w", err)
		}
		return nil
	})
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*appointment.Appointment, error) {
	var a appointment.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err, appointment.ErrAppointmentNotFound)
	}
	return &a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, id string, mutate func(*appointment.Appointment) error) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&a, "id = ?", id).Error; err != nil {
			return notFound(err, appointment.ErrAppointmentNotFound)
		}
		if err := mutate(&a); err != nil {
			return err
		}
		return tx.Save(&a).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListAppointmentsQuery) ([]*appointment.Appointment, error) {
	db := r.db.WithContext(ctx).Model(&appointment.Appointment{})
	if q != nil {
		if q.Search != "" {
			p := containsPattern(q.Search)
			db = db.Where("patient_name ILIKE ? OR id ILIKE ?", p, p)
		}
		if q.Status != "" && q.Status != appointment.StatusFilterAll {
			db = db.Where("status = ?", q.Status)
		}
	}

	var out []*appointment.Appointment
	if err := db.Order("position ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) Seed(ctx context.Context, items []*appointment.Appointment) (int, error) {
	var added int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		added, err = seedRows(tx, "appointments", items,
			func(a *appointment.Appointment) string { return a.ID },
			func(a *appointment.Appointment, pos int64) { a.Position = pos },
		)
		return err
	})
	return added, err
}
