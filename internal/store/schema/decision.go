package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Decision represents the decisions table - one teacher decision per discount snapshot
type Decision struct {
	// ID is a UUID, also used in the ledger external refs of the settlement
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`
	// SnapshotID is the owning snapshot; a snapshot has at most one decision
	SnapshotID string `gorm:"column:snapshot_id;not null;type:varchar(36);uniqueIndex:idx_decisions_snapshot"`
	// TeacherID is denormalized from the snapshot for dashboard listing
	TeacherID int64 `gorm:"column:teacher_id;not null;index:idx_decisions_teacher_state,priority:1"`
	// State is PENDING, ACCEPTED, DECLINED or EXPIRED
	State string `gorm:"column:state;not null;type:varchar(16);index:idx_decisions_teacher_state,priority:2;index:idx_decisions_state_expires,priority:1"`
	// ExpiresAt is created_at + decision ttl
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index:idx_decisions_state_expires,priority:2"`
	// DecidedAt is set on the terminal transition
	DecidedAt *time.Time `gorm:"column:decided_at"`
	// Settlement is the recorded settlement summary of a terminal decision
	Settlement datatypes.JSON `gorm:"column:settlement"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;not null"`

	// Associations
	Snapshot DiscountSnapshot `gorm:"foreignKey:SnapshotID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for the Decision model
func (Decision) TableName() string {
	return "decisions"
}
