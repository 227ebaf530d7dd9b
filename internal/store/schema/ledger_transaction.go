package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// LedgerTransaction represents the ledger_transactions table - the append-only log of balance mutations
type LedgerTransaction struct {
	// ID is a UUID
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`
	// UserID is the user whose balance the row mutated
	UserID int64 `gorm:"column:user_id;not null;uniqueIndex:idx_ledger_user_kind_ref,priority:1;index:idx_ledger_user_created,priority:1"`
	// Kind is the business reason (credit_reward, debit_discount, stake, ...)
	Kind string `gorm:"column:kind;not null;type:varchar(32);uniqueIndex:idx_ledger_user_kind_ref,priority:2"`
	// Amount is the signed effect on the available sub-balance
	Amount decimal.Decimal `gorm:"column:amount;not null;type:numeric(38,8)"`
	// ExternalRef is the idempotency key (decision id, submission id, tx hash, ...)
	ExternalRef *string `gorm:"column:external_ref;type:varchar(255);uniqueIndex:idx_ledger_user_kind_ref,priority:3"`
	// CourseID attributes reward rows to a course for budget accounting
	CourseID *int64 `gorm:"column:course_id;index:idx_ledger_course"`
	// Metadata holds free-form context (reviewer score, tx hash, ...)
	Metadata datatypes.JSON `gorm:"column:metadata"`
	// CreatedAt is monotonic per user
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_ledger_user_created,priority:2"`
}

// TableName specifies the table name for the LedgerTransaction model
func (LedgerTransaction) TableName() string {
	return "ledger_transactions"
}
