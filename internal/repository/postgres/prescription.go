package postgres

import (
	"context"
	"fmt"

	"github.com/eyualpha/HealthLink/internal/domain/prescription"
	"gorm.io/gorm"
)

type PrescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *prescription.Prescription) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTable(tx, "prescriptions"); err != nil {
			return err
		}
		id, pos, err := nextIdentity(tx, "prescriptions", prescription.IDPrefix)
		if err != nil {
			return err
		}
		p.ID = id
		p.Position = pos
		p.Status = prescription.StatusActive
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("inserting prescription: %w", err)
		}
		return nil
	})
}

func (r *PrescriptionRepository) GetByID(ctx context.Context, id string) (*prescription.Prescription, error) {
	var p prescription.Prescription
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, prescription.ErrPrescriptionNotFound)
	}
	return &p, nil
}

func (r *PrescriptionRepository) Update(ctx context.Context, id string, mutate func(*prescription.Prescription) error) (*prescription.Prescription, error) {
	var p prescription.Prescription
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&p, "id = ?", id).Error; err != nil {
			return notFound(err, prescription.ErrPrescriptionNotFound)
		}
		if err := mutate(&p); err != nil {
			return err
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PrescriptionRepository) List(ctx context.Context, q *prescription.ListPrescriptionsQuery) ([]*prescription.Prescription, error) {
	db := r.db.WithContext(ctx).Model(&prescription.Prescription{})
	if q != nil && q.Search != "" {
		p := containsPattern(q.Search)
		db = db.Where("patient_name ILIKE ? OR medication ILIKE ? OR id ILIKE ?", p, p, p)
	}

	var out []*prescription.Prescription
	if err := db.Order("position ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}
	return out, nil
}

func (r *PrescriptionRepository) Seed(ctx context.Context, items []*prescription.Prescription) (int, error) {
	var added int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		added, err = seedRows(tx, "prescriptions", items,
			func(p *prescription.Prescription) string { return p.ID },
			func(p *prescription.Prescription, pos int64) { p.Position = pos },
		)
		return err
	})
	return added, err
}
