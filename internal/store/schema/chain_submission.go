package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChainSubmission represents the chain_submissions table - reconciliation log of post-commit mints
type ChainSubmission struct {
	// ID is a UUID, also used in the withdraw ledger refs
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`
	// UserID is the user whose internal balance was debited
	UserID int64 `gorm:"column:user_id;not null;index"`
	// ToAddress is the wallet receiving the mint
	ToAddress string `gorm:"column:to_address;not null;type:varchar(42)"`
	// Amount is the TEO amount debited from the ledger
	Amount decimal.Decimal `gorm:"column:amount;not null;type:numeric(38,8)"`
	// AmountWei is the on-chain amount
	AmountWei string `gorm:"column:amount_wei;not null;type:varchar(78)"`
	// Status is PENDING, SUBMITTED, CONFIRMED or FAILED
	Status string `gorm:"column:status;not null;type:varchar(16);index:idx_chain_submissions_status,priority:1"`
	// TxHash is set once the mint has been broadcast
	TxHash *string `gorm:"column:tx_hash;type:varchar(66)"`
	// LastError holds the final failure reason
	LastError *string   `gorm:"column:last_error;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_chain_submissions_status,priority:2"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for the ChainSubmission model
func (ChainSubmission) TableName() string {
	return "chain_submissions"
}
