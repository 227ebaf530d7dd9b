// Package storetest opens throwaway databases for tests
package storetest

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/teocoin/settlement-engine/internal/store"
)

// GormConfig is the gorm configuration shared by tests and binaries
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	}
}

// NewSQLiteDB opens a private in-memory sqlite database with the engine schema.
// extra models (e.g. catalog tables) are migrated alongside.
func NewSQLiteDB(t *testing.T, extra ...any) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection serializes writers the way row locks do on postgres
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, store.Migrate(db))
	if len(extra) > 0 {
		require.NoError(t, db.AutoMigrate(extra...))
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// NewSQLiteStore opens a private sqlite database and wraps it in a store
func NewSQLiteStore(t *testing.T, extra ...any) (store.Store, *gorm.DB) {
	t.Helper()
	db := NewSQLiteDB(t, extra...)
	return store.NewStore(db, store.WithTxMaxRetries(2)), db
}
