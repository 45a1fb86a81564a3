package memory

import (
	"context"
	"time"

	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/internal/domain/prescription"
)

type PrescriptionRepository struct {
	c *collection[prescription.Prescription]
}

func NewPrescriptionRepository() *PrescriptionRepository {
	return &PrescriptionRepository{
		c: newCollection(
			func(p *prescription.Prescription) string { return p.ID },
			shallowClone[prescription.Prescription],
		),
	}
}

func (r *PrescriptionRepository) Create(_ context.Context, p *prescription.Prescription) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	now := time.Now().UTC()
	p.ID = domain.NextID(prescription.IDPrefix, r.c.ids())
	p.Status = prescription.StatusActive
	p.CreatedAt = now
	p.UpdatedAt = now
	r.c.prepend(p)
	return nil
}

func (r *PrescriptionRepository) GetByID(_ context.Context, id string) (*prescription.Prescription, error) {
	p, ok := r.c.get(id)
	if !ok {
		return nil, prescription.ErrPrescriptionNotFound
	}
	return p, nil
}

func (r *PrescriptionRepository) Update(_ context.Context, id string, mutate func(*prescription.Prescription) error) (*prescription.Prescription, error) {
	return r.c.update(id, prescription.ErrPrescriptionNotFound, func(p *prescription.Prescription) error {
		if err := mutate(p); err != nil {
			return err
		}
		p.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *PrescriptionRepository) List(_ context.Context, q *prescription.ListPrescriptionsQuery) ([]*prescription.Prescription, error) {
	search := ""
	if q != nil {
		search = q.Search
	}
	return r.c.filter(func(p *prescription.Prescription) bool { return p.Matches(search) }), nil
}

func (r *PrescriptionRepository) Seed(_ context.Context, items []*prescription.Prescription) (int, error) {
	return r.c.seed(items), nil
}
