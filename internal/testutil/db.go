// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewTestDB opens a private, migrated in-memory SQLite database that is closed
// when the test ends.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		Env:           "test",
		DBDriver:      "sqlite",
		DBPath:        fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		DBAutoMigrate: true,
	}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
