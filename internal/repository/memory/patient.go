package memory

import (
	"context"
	"time"

	"github.com/eyualpha/HealthLink/internal/domain/patient"
)

type PatientRepository struct {
	c *collection[patient.Record]
}

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{
		c: newCollection(
			func(r *patient.Record) string { return r.ID },
			(*patient.Record).Clone,
		),
	}
}

func (r *PatientRepository) Create(_ context.Context, rec *patient.Record) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if r.c.indexOf(rec.ID) >= 0 {
		return patient.ErrPatientAlreadyExists
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.c.prepend(rec)
	return nil
}

func (r *PatientRepository) GetByID(_ context.Context, id string) (*patient.Record, error) {
	rec, ok := r.c.get(id)
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return rec, nil
}

func (r *PatientRepository) Replace(_ context.Context, rec *patient.Record) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	i := r.c.indexOf(rec.ID)
	if i < 0 {
		return patient.ErrPatientNotFound
	}
	next := rec.Clone()
	next.CreatedAt = r.c.items[i].CreatedAt
	next.UpdatedAt = time.Now().UTC()
	r.c.items[i] = next
	rec.CreatedAt, rec.UpdatedAt = next.CreatedAt, next.UpdatedAt
	return nil
}

func (r *PatientRepository) Update(_ context.Context, id string, mutate func(*patient.Record) error) (*patient.Record, error) {
	return r.c.update(id, patient.ErrPatientNotFound, func(rec *patient.Record) error {
		if err := mutate(rec); err != nil {
			return err
		}
		rec.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *PatientRepository) List(_ context.Context, q *patient.ListPatientsQuery) ([]*patient.Record, error) {
	search := ""
	if q != nil {
		search = q.Search
	}
	return r.c.filter(func(rec *patient.Record) bool { return rec.Matches(search) }), nil
}

func (r *PatientRepository) Seed(_ context.Context, items []*patient.Record) (int, error) {
	return r.c.seed(items), nil
}
