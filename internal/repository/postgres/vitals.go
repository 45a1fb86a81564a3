package postgres

import (
	"context"
	"fmt"

	"github.com/eyualpha/HealthLink/internal/domain/vitals"
	"gorm.io/gorm"
)

type VitalsRepository struct {
	db *gorm.DB
}

func NewVitalsRepository(db *gorm.DB) *VitalsRepository {
	return &VitalsRepository{db: db}
}

func (r *VitalsRepository) Create(ctx context.Context, v *vitals.Reading) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTable(tx, "vital_signs"); err != nil {
			return err
		}
		id, pos, err := nextIdentity(tx, "vital_signs", vitals.IDPrefix)
		if err != nil {
			return err
		}
		v.ID = id
		v.Position = pos
		if err := tx.Create(v).Error; err != nil {
			return fmt.Errorf("inserting vital signs: %w", err)
		}
		return nil
	})
}

func (r *VitalsRepository) GetByID(ctx context.Context, id string) (*vitals.Reading, error) {
	var v vitals.Reading
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, notFound(err, vitals.ErrReadingNotFound)
	}
	return &v, nil
}

func (r *VitalsRepository) List(ctx context.Context, q *vitals.ListVitalsQuery) ([]*vitals.Reading, error) {
	db := r.db.WithContext(ctx).Model(&vitals.Reading{})
	if q != nil && q.Search != "" {
		p := containsPattern(q.Search)
		db = db.Where("patient_name ILIKE ? OR patient_id ILIKE ?", p, p)
	}

	var out []*vitals.Reading
	if err := db.Order("position ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing vital signs: %w", err)
	}
	return out, nil
}

func (r *VitalsRepository) Seed(ctx context.Context, items []*vitals.Reading) (int, error) {
	var added int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		added, err = seedRows(tx, "vital_signs", items,
			func(v *vitals.Reading) string { return v.ID },
			func(v *vitals.Reading, pos int64) { v.Position = pos },
		)
		return err
	})
	return added, err
}
