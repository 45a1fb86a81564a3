package prescription

import (
	"context"
)

type Repository interface {
	// Create assigns the next RX identifier and prepends the prescription.
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id string) (*Prescription, error)
	Update(ctx context.Context, id string, mutate func(p *Prescription) error) (*Prescription, error)
	List(ctx context.Context, q *ListPrescriptionsQuery) ([]*Prescription, error)

	// Seed appends records after the existing ones, keeping their ids.
	// Ids already present are skipped; the number added is returned.
	Seed(ctx context.Context, items []*Prescription) (int, error)
}
