package database

import (
	"fmt"
	"time"

	"github.com/eyualpha/HealthLink/internal/config"
	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/internal/domain/appointment"
	"github.com/eyualpha/HealthLink/internal/domain/patient"
	"github.com/eyualpha/HealthLink/internal/domain/prescription"
	"github.com/eyualpha/HealthLink/internal/domain/vitals"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the pool. Queries slower than cfg.SlowQueryThreshold are
// logged at warn level through log.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		PrepareStmt:    true,
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&domain.AuditLog{},
		&patient.Record{},
		&appointment.Appointment{},
		&prescription.Prescription{},
		&vitals.Reading{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db, log); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		name  string
		query string
	}{
		{
			name:  "idx_appointments_status_position",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_status_position ON appointments (status, position)`,
		},
		// Search is a case-insensitive substring match; trigram indexes serve ILIKE '%q%'.
		{
			name:  "idx_appointments_patient_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_patient_trgm ON appointments USING gin (patient_name gin_trgm_ops)`,
		},
		{
			name:  "idx_patient_records_name_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_patient_records_name_trgm ON patient_records USING gin (name gin_trgm_ops)`,
		},
		{
			name:  "idx_prescriptions_medication_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_prescriptions_medication_trgm ON prescriptions USING gin (medication gin_trgm_ops)`,
		},
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		// Managed databases may refuse extensions; search still works without the index.
		log.Warn("pg_trgm unavailable, skipping trigram indexes", zap.Error(err))
		return db.Exec(indexes[0].query).Error
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("%s: %w", idx.name, err)
		}
	}

	return nil
}
