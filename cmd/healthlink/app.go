package main

import (
	"context"
	"fmt"
	"time"

	"github.com/eyualpha/HealthLink/internal/config"
	"github.com/eyualpha/HealthLink/internal/fixtures"
	v1 "github.com/eyualpha/HealthLink/internal/handler/v1"
	"github.com/eyualpha/HealthLink/internal/repository/memory"
	"github.com/eyualpha/HealthLink/internal/repository/postgres"
	"github.com/eyualpha/HealthLink/internal/safety"
	"github.com/eyualpha/HealthLink/internal/server"
	"github.com/eyualpha/HealthLink/internal/service"
	"github.com/eyualpha/HealthLink/pkg/auth"
	"github.com/eyualpha/HealthLink/pkg/database"
	"github.com/eyualpha/HealthLink/pkg/metrics"
	"github.com/eyualpha/HealthLink/pkg/tracer"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const memoryAuditLimit = 1000

type storage struct {
	repos fixtures.Repos
	audit service.AuditRepository
	ping  func(ctx context.Context) error
	close func() error
}

type app struct {
	server  *server.Server
	closers []func(ctx context.Context) error
	timeout time.Duration
	log     *zap.Logger
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{timeout: cfg.Server.ShutdownTimeout, log: log}

	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, tp.Shutdown)

	store, err := openStorage(cfg, log)
	if err != nil {
		a.close()
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return store.close() })

	if cfg.Storage.SeedFixtures {
		if err := seed(ctx, store.repos, log); err != nil {
			a.close()
			return nil, err
		}
	}

	m := metrics.NewCollector(cfg.App.Name, prometheus.DefaultRegisterer)
	auditSvc := service.NewAuditService(store.audit, cfg.Audit.BufferSize, m, log.Named("audit"))
	// Registered last so it runs first: the audit worker drains before storage closes.
	a.closers = append(a.closers, func(ctx context.Context) error {
		auditSvc.Shutdown(ctx)
		return nil
	})

	checker := safety.NewChecker(log.Named("safety"), safety.NewAllergyConflictRule(store.repos.Patients))

	handlers := &v1.Handlers{
		Appointments: v1.NewAppointmentHandler(
			service.NewAppointmentService(store.repos.Appointments, auditSvc, m, log.Named("appointments")), log),
		Patients: v1.NewPatientHandler(
			service.NewPatientService(store.repos.Patients, auditSvc, m, log.Named("patients")), log),
		Prescriptions: v1.NewPrescriptionHandler(
			service.NewPrescriptionService(store.repos.Prescriptions, checker, auditSvc, m, log.Named("prescriptions")), log),
		Vitals: v1.NewVitalsHandler(
			service.NewVitalsService(store.repos.Vitals, auditSvc, m, log.Named("vitals")), log),
	}

	a.server = server.New(cfg, server.Deps{
		Handlers: handlers,
		Tokens:   auth.NewJWTManager(cfg.JWT),
		Metrics:  m,
		Log:      log,
		Ping:     store.ping,
	})

	return a, nil
}

// close runs the closers in reverse registration order.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn("shutdown step failed", zap.Error(err))
		}
	}
}

func openStorage(cfg *config.Config, log *zap.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.Connect(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		store, err := postgresStorage(db)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db, log); err != nil {
			_ = store.close()
			return nil, err
		}
		return store, nil

	case config.StorageMemory:
		return &storage{
			repos: fixtures.Repos{
				Appointments:  memory.NewAppointmentRepository(),
				Patients:      memory.NewPatientRepository(),
				Prescriptions: memory.NewPrescriptionRepository(),
				Vitals:        memory.NewVitalsRepository(),
			},
			audit: memory.NewAuditRepository(memoryAuditLimit),
			close: func() error { return nil },
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func postgresStorage(db *gorm.DB) (*storage, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	return &storage{
		repos: fixtures.Repos{
			Appointments:  postgres.NewAppointmentRepository(db),
			Patients:      postgres.NewPatientRepository(db),
			Prescriptions: postgres.NewPrescriptionRepository(db),
			Vitals:        postgres.NewVitalsRepository(db),
		},
		audit: postgres.NewAuditRepository(db),
		ping:  sqlDB.PingContext,
		close: sqlDB.Close,
	}, nil
}

func seed(ctx context.Context, repos fixtures.Repos, log *zap.Logger) error {
	set, err := fixtures.Load()
	if err != nil {
		return err
	}

	sum, err := fixtures.Seed(ctx, repos, set)
	if err != nil {
		return err
	}

	log.Info("fixtures seeded",
		zap.Int("appointments", sum.Appointments),
		zap.Int("patients", sum.Patients),
		zap.Int("prescriptions", sum.Prescriptions),
		zap.Int("vitals", sum.Vitals),
	)
	return nil
}
