package patient

import (
	"context"
)

type Repository interface {
	// Create inserts a record at the head of the collection. Returns
	// ErrPatientAlreadyExists on a duplicate ID.
	Create(ctx context.Context, r *Record) error

	// GetByID returns ErrPatientNotFound if absent.
	GetByID(ctx context.Context, id string) (*Record, error)

	// Replace overwrites the stored record with the same ID, keeping its
	// position. Returns ErrPatientNotFound if absent.
	Replace(ctx context.Context, r *Record) error

	// Update runs mutate against the stored record atomically.
	Update(ctx context.Context, id string, mutate func(r *Record) error) (*Record, error)

	// List returns matching records in collection order.
	List(ctx context.Context, q *ListPatientsQuery) ([]*Record, error)

	// Seed appends records after the existing ones, keeping their ids.
	// Ids already present are skipped; the number added is returned.
	Seed(ctx context.Context, items []*Record) (int, error)
}
