package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/teocoin/settlement-engine/internal/store/schema"
)

// Models lists every table owned by the engine
func Models() []any {
	return []any{
		&schema.TokenBalance{},
		&schema.LedgerTransaction{},
		&schema.DiscountSnapshot{},
		&schema.Decision{},
		&schema.TeacherAutoRule{},
		&schema.ChainSubmission{},
	}
}

// Migrate creates or updates the engine tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
