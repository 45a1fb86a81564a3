package vitals

import "context"

type Repository interface {
	Create(ctx context.Context, r *Reading) error
	GetByID(ctx context.Context, id string) (*Reading, error)
	List(ctx context.Context, q *ListVitalsQuery) ([]*Reading, error)

	// Seed appends records after the existing ones, keeping their ids.
	// Ids already present are skipped; the number added is returned.
	Seed(ctx context.Context, items []*Reading) (int, error)
}
