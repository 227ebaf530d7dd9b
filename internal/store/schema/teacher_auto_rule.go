package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// TeacherAutoRule represents the teacher_auto_rules table - at most one policy per teacher
type TeacherAutoRule struct {
	TeacherID    int64            `gorm:"column:teacher_id;primaryKey;autoIncrement:false"`
	Mode         string           `gorm:"column:mode;not null;type:varchar(16)"`
	ThresholdTEO *decimal.Decimal `gorm:"column:threshold_teo;type:numeric(38,8)"`
	CreatedAt    time.Time        `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for the TeacherAutoRule model
func (TeacherAutoRule) TableName() string {
	return "teacher_auto_rules"
}
