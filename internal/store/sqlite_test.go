package store_test

import (
	"testing"

	"github.com/teocoin/settlement-engine/internal/store"
	"github.com/teocoin/settlement-engine/internal/store/storetest"
)

func initSQLiteTestStore(t *testing.T) store.Store {
	s, _ := storetest.NewSQLiteStore(t)
	return s
}

// TestSQLiteStore runs all store tests against in-memory SQLite
func TestSQLiteStore(t *testing.T) {
	RunStoreTests(t, initSQLiteTestStore)
}
