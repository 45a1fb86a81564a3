package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/eyualpha/HealthLink/internal/config"
	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/pkg/auth"
	"github.com/eyualpha/HealthLink/pkg/database"
	"github.com/eyualpha/HealthLink/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "healthlink",
		Short:        "HealthLink clinic records API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("loading %s: %w", envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().String("env-file", ".env", "Environment file loaded before reading configuration (optional)")

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(tokenCmd())

	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.App.Version = version

			log, err := logger.New(cfg.Log, cfg.App)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, log)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != config.StoragePostgres {
				return fmt.Errorf("migrate requires STORAGE_DRIVER=%s, got %q", config.StoragePostgres, cfg.Storage.Driver)
			}

			log, err := logger.New(cfg.Log, cfg.App)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.Connect(cfg.Database, log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			return database.Migrate(db, log)
		},
	}
}

func tokenCmd() *cobra.Command {
	var claims domain.Claims
	var role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			claims.Role = domain.Role(role)
			pair, err := auth.NewJWTManager(cfg.JWT).IssueAccessToken(&claims)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(pair)
		},
	}

	cmd.Flags().StringVar(&role, "role", string(domain.RoleDoctor), "admin, doctor, nurse or patient")
	cmd.Flags().StringVar(&claims.Subject, "subject", "", "Token subject (user id)")
	cmd.Flags().StringVar(&claims.Name, "name", "", "Display name; patients only see appointments booked under this name")
	cmd.Flags().StringVar(&claims.Email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	app, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	log.Info("starting healthlink",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("addr", cfg.Server.Address()),
	)

	return app.server.Run(ctx)
}
