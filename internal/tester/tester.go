package tester

import (
	"path/filepath"
	"testing"

	"github.com/emrgen/sweater/internal/config"
	"github.com/emrgen/sweater/internal/model"
	"gorm.io/gorm"
)

// RelationKinds is the relation vocabulary used by tests.
var RelationKinds = []string{"therefore", "because", "contradicts"}

// Setup opens a fresh migrated sqlite database in a test temp directory.
func Setup(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "sweater.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := config.OpenDB(config.DBConfig{Driver: config.DriverSqlite, DSN: dsn})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := model.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}
