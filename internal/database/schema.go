package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"inkpost/internal/middleware"
	"inkpost/internal/models"

	"gorm.io/gorm"
)

// IsProdLikeEnv reports whether env must use versioned SQL migrations instead of AutoMigrate.
func IsProdLikeEnv(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging" || e == "stage"
}

// AutoMigrate creates or updates every model table with GORM.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.AllModels()...)
}

// ApplySchema runs the embedded SQL migrations in production-like
// environments and GORM AutoMigrate everywhere else.
func ApplySchema(ctx context.Context, db *gorm.DB, env string) error {
	if IsProdLikeEnv(env) {
		migrations, err := Migrations()
		if err != nil {
			return err
		}
		if err := NewMigrator(db, migrations).Up(ctx); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
		return nil
	}

	middleware.Logger.Info("Running GORM AutoMigrate", slog.String("env", env))
	if err := AutoMigrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
