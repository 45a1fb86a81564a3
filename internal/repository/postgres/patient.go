package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/eyualpha/HealthLink/internal/domain/patient"
	"gorm.io/gorm"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, rec *patient.Record) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTable(tx, "patient_records"); err != nil {
			return err
		}
		var head int64
		if err := tx.Model(&patient.Record{}).Select("COALESCE(MIN(position), 0)").Scan(&head).Error; err != nil {
			return fmt.Errorf("reading head position: %w", err)
		}
		rec.Position = head - 1
		if err := tx.Create(rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return patient.ErrPatientAlreadyExists
			}
			return fmt.Errorf("inserting patient record: %w", err)
		}
		return nil
	})
}

func (r *PatientRepository) GetByID(ctx context.Context, id string) (*patient.Record, error) {
	var rec patient.Record
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err, patient.ErrPatientNotFound)
	}
	return &rec, nil
}

func (r *PatientRepository) Replace(ctx context.Context, rec *patient.Record) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current patient.Record
		if err := forUpdate(tx).First(&current, "id = ?", rec.ID).Error; err != nil {
			return notFound(err, patient.ErrPatientNotFound)
		}
		rec.Position = current.Position
		rec.CreatedAt = current.CreatedAt
		return tx.Save(rec).Error
	})
}

func (r *PatientRepository) Update(ctx context.Context, id string, mutate func(*patient.Record) error) (*patient.Record, error) {
	var rec patient.Record
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&rec, "id = ?", id).Error; err != nil {
			return notFound(err, patient.ErrPatientNotFound)
		}
		if err := mutate(&rec); err != nil {
			return err
		}
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PatientRepository) List(ctx context.Context, q *patient.ListPatientsQuery) ([]*patient.Record, error) {
	db := r.db.WithContext(ctx).Model(&patient.Record{})
	if q != nil && q.Search != "" {
		p := containsPattern(q.Search)
		db = db.Where("name ILIKE ? OR id ILIKE ?", p, p)
	}

	var out []*patient.Record
	if err := db.Order("position ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing patient records: %w", err)
	}
	return out, nil
}

func (r *PatientRepository) Seed(ctx context.Context, items []*patient.Record) (int, error) {
	var added int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		added, err = seedRows(tx, "patient_records", items,
			func(rec *patient.Record) string { return rec.ID },
			func(rec *patient.Record, pos int64) { rec.Position = pos },
		)
		return err
	})
	return added, err
}
