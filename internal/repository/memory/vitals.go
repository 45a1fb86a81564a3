package memory

import (
	"context"
	"time"

	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/internal/domain/vitals"
)

type VitalsRepository struct {
	c *collection[vitals.Reading]
}

func NewVitalsRepository() *VitalsRepository {
	return &VitalsRepository{
		c: newCollection(func(v *vitals.Reading) string { return v.ID }, cloneReading),
	}
}

func cloneReading(v *vitals.Reading) *vitals.Reading {
	c := *v
	if v.HeartRate != nil {
		hr := *v.HeartRate
		c.HeartRate = &hr
	}
	if v.Temperature != nil {
		temp := *v.Temperature
		c.Temperature = &temp
	}
	if v.SpO2 != nil {
		spo2 := *v.SpO2
		c.SpO2 = &spo2
	}
	return &c
}

func (r *VitalsRepository) Create(_ context.Context, v *vitals.Reading) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	v.ID = domain.NextID(vitals.IDPrefix, r.c.ids())
	v.CreatedAt = time.Now().UTC()
	r.c.prepend(v)
	return nil
}

func (r *VitalsRepository) GetByID(_ context.Context, id string) (*vitals.Reading, error) {
	v, ok := r.c.get(id)
	if !ok {
		return nil, vitals.ErrReadingNotFound
	}
	return v, nil
}

func (r *VitalsRepository) List(_ context.Context, q *vitals.ListVitalsQuery) ([]*vitals.Reading, error) {
	search := ""
	if q != nil {
		search = q.Search
	}
	return r.c.filter(func(v *vitals.Reading) bool { return v.Matches(search) }), nil
}

func (r *VitalsRepository) Seed(_ context.Context, items []*vitals.Reading) (int, error) {
	return r.c.seed(items), nil
}
