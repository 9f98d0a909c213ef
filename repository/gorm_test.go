package repository_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/movein/movein-api/config"
	"github.com/movein/movein-api/db"
	"github.com/movein/movein-api/repository"
	"github.com/movein/movein-api/repository/storetest"
)

// TestGormStore runs against a disposable postgres database named by
// TEST_DATABASE_URL. Every table is truncated between subtests.
func TestGormStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Connect(config.DatabaseConfig{URL: dsn, MaxOpenConns: 5, MaxIdleConns: 1})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	storetest.Run(t, func(t *testing.T) *repository.Store {
		truncate(t, conn)
		return repository.NewGormStore(conn)
	})
}

func truncate(t *testing.T, conn *gorm.DB) {
	t.Helper()
	require.NoError(t, conn.Exec(
		"TRUNCATE messages, favorites, reviews, listings, users RESTART IDENTITY CASCADE",
	).Error)
}
