package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountSnapshot represents the discount_snapshots table - immutable pricing capture at intent time
type DiscountSnapshot struct {
	ID                    string          `gorm:"column:id;primaryKey;type:varchar(36)"`
	CourseID              int64           `gorm:"column:course_id;not null;index"`
	TeacherID             int64           `gorm:"column:teacher_id;not null"`
	StudentID             int64           `gorm:"column:student_id;not null;index"`
	PriceEUR              decimal.Decimal `gorm:"column:price_eur;not null;type:numeric(12,2)"`
	DiscountPercent       int             `gorm:"column:discount_percent;not null"`
	TEOCostWei            string          `gorm:"column:teo_cost_wei;not null;type:varchar(78)"`
	TeacherBonusWei       string          `gorm:"column:teacher_bonus_wei;not null;type:varchar(78)"`
	TeacherCommissionRate decimal.Decimal `gorm:"column:teacher_commission_rate;not null;type:numeric(5,4)"`
	TeacherStakingTier    string          `gorm:"column:teacher_staking_tier;not null;type:varchar(32)"`
	CreatedAt             time.Time       `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for the DiscountSnapshot model
func (DiscountSnapshot) TableName() string {
	return "discount_snapshots"
}
