package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenBalance represents the token_balances table - the authoritative internal TEO position of a user
type TokenBalance struct {
	// UserID is the platform user owning the balance (the reserve pool is a regular row)
	UserID int64 `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	// Available is the spendable sub-balance
	Available decimal.Decimal `gorm:"column:available;not null;type:numeric(38,8);check:chk_token_balances_available,available >= 0"`
	// Staked is the sub-balance locked for tier qualification
	Staked decimal.Decimal `gorm:"column:staked;not null;type:numeric(38,8);check:chk_token_balances_staked,staked >= 0"`
	// LastEntryAt is the created_at of the user's latest ledger row, used to keep created_at monotonic
	LastEntryAt *time.Time `gorm:"column:last_entry_at"`
	// CreatedAt is the timestamp when this balance was created
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	// UpdatedAt is the timestamp when this balance was last mutated
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for the TokenBalance model
func (TokenBalance) TableName() string {
	return "token_balances"
}
