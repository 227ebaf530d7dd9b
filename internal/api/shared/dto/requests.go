package dto

import (
	"github.com/shopspring/decimal"

	"github.com/teocoin/settlement-engine/internal/domain"
)

// CreateDiscountRequest is the body of POST /api/v1/discounts
type CreateDiscountRequest struct {
	StudentID       int64  `json:"student_id" binding:"required,gt=0"`
	TeacherID       int64  `json:"teacher_id" binding:"required,gt=0"`
	CourseID        int64  `json:"course_id" binding:"required,gt=0"`
	DiscountPercent int    `json:"discount_percent" binding:"required"`
	Signature       string `json:"signature" binding:"required"`
}

// ToDomain converts the body into the orchestrator input
func (r CreateDiscountRequest) ToDomain() domain.DiscountRequest {
	return domain.DiscountRequest{
		StudentID:       domain.UserID(r.StudentID),
		TeacherID:       domain.UserID(r.TeacherID),
		CourseID:        r.CourseID,
		DiscountPercent: r.DiscountPercent,
		Signature:       r.Signature,
	}
}

// ResolveDecisionRequest is the body of POST /api/v1/decisions/:id/resolve
type ResolveDecisionRequest struct {
	Outcome string `json:"outcome" binding:"required"`
}

// AutoRuleRequest is the body of PUT /api/v1/teachers/:id/auto-rule
type AutoRuleRequest struct {
	Mode         string           `json:"mode" binding:"required"`
	ThresholdTEO *decimal.Decimal `json:"threshold_teo"`
}

// ScoredReviewRequest is the body of POST /api/v1/reviews/scored
type ScoredReviewRequest struct {
	SubmissionID int64 `json:"submission_id" binding:"required,gt=0"`
	ReviewerID   int64 `json:"reviewer_id" binding:"required,gt=0"`
	Score        *int  `json:"score" binding:"required"`
}

// AmountRequest is the body of stake, unstake and withdraw calls
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
	// ExternalRef makes stake/unstake idempotent when set
	ExternalRef string `json:"external_ref"`
}

// DepositRequest is the body of POST /api/v1/users/:id/deposits
type DepositRequest struct {
	TxHash string          `json:"tx_hash" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}
