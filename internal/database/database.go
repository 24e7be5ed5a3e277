// Package database opens the relational store and keeps its schema current.
package database

import (
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// onOpen lets tests observe the handle Connect opened.
var onOpen = func(*gorm.DB) {}

// Connect opens the database selected by cfg.DBDriver and migrates the schema
// when cfg.DBAutoMigrate is set.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(middleware.Logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	onOpen(db)

	if err := configurePool(db, cfg); err != nil {
		_ = Close(db)
		return nil, err
	}

	middleware.Logger.Info("Database connected successfully", slog.String("driver", cfg.DBDriver))

	if cfg.DBAutoMigrate {
		if err := Migrate(db); err != nil {
			_ = Close(db)
			return nil, err
		}
		middleware.Logger.Info("Database migration completed")
	}

	return db, nil
}

// Migrate creates or updates the blog tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Reset drops the blog tables and recreates them empty.
func Reset(db *gorm.DB) error {
	// Children first so foreign keys never dangle.
	if err := db.Migrator().DropTable(&models.Comment{}, &models.Post{}, &models.User{}); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return Migrate(db)
}

// TableStatus reports whether a model's table exists.
type TableStatus struct {
	Table   string
	Present bool
}

// SchemaStatus lists the blog tables and whether each one is present.
func SchemaStatus(db *gorm.DB) []TableStatus {
	migrator := db.Migrator()
	out := make([]TableStatus, 0, 3)
	for _, model := range []any{&models.User{}, &models.Post{}, &models.Comment{}} {
		stmt := &gorm.Statement{DB: db}
		name := ""
		if err := stmt.Parse(model); err == nil {
			name = stmt.Schema.Table
		}
		out = append(out, TableStatus{Table: name, Present: migrator.HasTable(model)})
	}
	return out
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "sqlite", "":
		return sqlite.Open(cfg.DBPath), nil
	case "postgres":
		sslMode := cfg.DBSSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			sslMode,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}

	if cfg.DBDriver == "postgres" {
		maxOpen := cfg.DBMaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 25
		}
		maxIdle := cfg.DBMaxIdleConns
		if maxIdle <= 0 {
			maxIdle = 5
		}
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxIdle)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		return nil
	}

	// SQLite serialises writers; one long-lived connection also keeps
	// in-memory databases alive.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return nil
}
