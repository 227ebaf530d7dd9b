package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UserID identifies a platform user (students, teachers, reviewers and the reserve pool)
type UserID int64

// LedgerKind is the business reason of a ledger transaction
type LedgerKind string

const (
	KindCreditReward  LedgerKind = "credit_reward"
	KindDebitDiscount LedgerKind = "debit_discount"
	KindStake         LedgerKind = "stake"
	KindUnstake       LedgerKind = "unstake"
	KindMintMirror    LedgerKind = "mint_mirror"
	KindBurnMirror    LedgerKind = "burn_mirror"
	KindRefund        LedgerKind = "refund"
	KindAdjustment    LedgerKind = "adjustment"
)

// Valid reports whether the kind is one of the known ledger kinds
func (k LedgerKind) Valid() bool {
	switch k {
	case KindCreditReward, KindDebitDiscount, KindStake, KindUnstake,
		KindMintMirror, KindBurnMirror, KindRefund, KindAdjustment:
		return true
	}
	return false
}

// DecisionState is the lifecycle state of a teacher decision
type DecisionState string

const (
	DecisionPending  DecisionState = "PENDING"
	DecisionAccepted DecisionState = "ACCEPTED"
	DecisionDeclined DecisionState = "DECLINED"
	DecisionExpired  DecisionState = "EXPIRED"
)

// Terminal reports whether no further transition is possible from the state
func (s DecisionState) Terminal() bool {
	return s == DecisionAccepted || s == DecisionDeclined || s == DecisionExpired
}

// Valid reports whether the state is known
func (s DecisionState) Valid() bool {
	return s == DecisionPending || s.Terminal()
}

// Outcome is the input that drives a PENDING decision into a terminal state
type Outcome string

const (
	OutcomeAcceptTEO  Outcome = "ACCEPT_TEO"
	OutcomeDeclineTEO Outcome = "DECLINE_TEO"
	OutcomeExpire     Outcome = "EXPIRE"
)

// ParseOutcome parses a caller-supplied outcome. EXPIRE is reserved for the sweeper.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(strings.ToUpper(strings.TrimSpace(s))) {
	case OutcomeAcceptTEO:
		return OutcomeAcceptTEO, nil
	case OutcomeDeclineTEO:
		return OutcomeDeclineTEO, nil
	}
	return "", ErrBadRequest.Withf("unknown outcome %q", s)
}

// AutoRuleMode is a teacher-configured policy evaluated at decision creation
type AutoRuleMode string

const (
	AutoRuleManual        AutoRuleMode = "MANUAL"
	AutoRuleAlwaysAccept  AutoRuleMode = "ALWAYS_ACCEPT"
	AutoRuleAlwaysDecline AutoRuleMode = "ALWAYS_DECLINE"
	AutoRuleThreshold     AutoRuleMode = "THRESHOLD"
)

// Valid reports whether the mode is known
func (m AutoRuleMode) Valid() bool {
	switch m {
	case AutoRuleManual, AutoRuleAlwaysAccept, AutoRuleAlwaysDecline, AutoRuleThreshold:
		return true
	}
	return false
}

// AutoRule is the at-most-one-per-teacher decision policy
type AutoRule struct {
	TeacherID    UserID           `json:"teacher_id"`
	Mode         AutoRuleMode     `json:"mode"`
	ThresholdTEO *decimal.Decimal `json:"threshold_teo,omitempty"`
}

// Validate checks that threshold_teo is present iff the mode is THRESHOLD
func (r AutoRule) Validate() error {
	if !r.Mode.Valid() {
		return ErrBadAutoRule.Withf("unknown mode %q", r.Mode)
	}
	if r.Mode == AutoRuleThreshold {
		if r.ThresholdTEO == nil || !r.ThresholdTEO.IsPositive() {
			return ErrBadAutoRule.Withf("threshold_teo must be positive for THRESHOLD mode")
		}
		return nil
	}
	if r.ThresholdTEO != nil {
		return ErrBadAutoRule.Withf("threshold_teo is only allowed for THRESHOLD mode")
	}
	return nil
}

// ChainSubmissionStatus tracks a post-commit chain submission
type ChainSubmissionStatus string

const (
	ChainSubmissionPending   ChainSubmissionStatus = "PENDING"
	ChainSubmissionSubmitted ChainSubmissionStatus = "SUBMITTED"
	ChainSubmissionConfirmed ChainSubmissionStatus = "CONFIRMED"
	ChainSubmissionFailed    ChainSubmissionStatus = "FAILED"
)

// Balance is a user's internal TEO position
type Balance struct {
	UserID    UserID          `json:"user_id"`
	Available decimal.Decimal `json:"available"`
	Staked    decimal.Decimal `json:"staked"`
}

// Total returns available + staked
func (b Balance) Total() decimal.Decimal {
	return b.Available.Add(b.Staked)
}

// LedgerEntry is a read model of one append-only ledger row
type LedgerEntry struct {
	ID          string          `json:"id"`
	UserID      UserID          `json:"user_id"`
	Kind        LedgerKind      `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	ExternalRef *string         `json:"external_ref,omitempty"`
	CourseID    *int64          `json:"course_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransactionFilter narrows list_transactions
type TransactionFilter struct {
	Kinds             []LedgerKind
	ExternalRefPrefix string
	Since             *time.Time
	Until             *time.Time
	Limit             int
	Offset            int
}

// Snapshot is the immutable pricing capture taken when a discount is requested
type Snapshot struct {
	ID                    string          `json:"id"`
	CourseID              int64           `json:"course_id"`
	TeacherID             UserID          `json:"teacher_id"`
	StudentID             UserID          `json:"student_id"`
	PriceEUR              decimal.Decimal `json:"price_eur"`
	DiscountPercent       int             `json:"discount_percent"`
	TEOCostWei            string          `json:"teo_cost_wei"`
	TeacherBonusWei       string          `json:"teacher_bonus_wei"`
	TeacherCommissionRate decimal.Decimal `json:"teacher_commission_rate"`
	TeacherStakingTier    string          `json:"teacher_staking_tier"`
	CreatedAt             time.Time       `json:"created_at"`
}

// Decision is the teacher's (or sweeper's) choice for a snapshot
type Decision struct {
	ID        string             `json:"id"`
	State     DecisionState      `json:"state"`
	ExpiresAt time.Time          `json:"expires_at"`
	DecidedAt *time.Time         `json:"decided_at,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	Snapshot  Snapshot           `json:"snapshot"`
	Summary   *SettlementSummary `json:"settlement_summary,omitempty"`
}

// SettlementSummary is recorded on the decision when it reaches a terminal state
type SettlementSummary struct {
	DecisionID         string          `json:"decision_id"`
	State              DecisionState   `json:"state"`
	TeacherID          UserID          `json:"teacher_id"`
	TeacherFiatEUR     decimal.Decimal `json:"teacher_fiat_eur"`
	TeacherTEO         decimal.Decimal `json:"teacher_teo"`
	ReserveDeltaTEO    decimal.Decimal `json:"reserve_delta_teo"`
	StudentDebitTEO    decimal.Decimal `json:"student_debit_teo"`
	DiscountedPriceEUR decimal.Decimal `json:"discounted_price_eur"`
	CommissionRate     decimal.Decimal `json:"commission_rate"`
	DecidedAt          time.Time       `json:"decided_at"`
}

// DiscountRequest is the input to create_discount_request
type DiscountRequest struct {
	StudentID       UserID `json:"student_id"`
	TeacherID       UserID `json:"teacher_id"`
	CourseID        int64  `json:"course_id"`
	DiscountPercent int    `json:"discount_percent"`
	Signature       string `json:"signature"`
}

// DiscountResult is the output of create_discount_request
type DiscountResult struct {
	DecisionID      string          `json:"decision_id"`
	State           DecisionState   `json:"state"`
	TEOCost         decimal.Decimal `json:"teo_cost"`
	TeacherBonus    decimal.Decimal `json:"teacher_bonus"`
	TEOCostWei      string          `json:"teo_cost_wei"`
	TeacherBonusWei string          `json:"teacher_bonus_wei"`
	ExpiresAt       time.Time       `json:"expires_at"`
}

// ScoredReview is the payload of observe_scored_review
type ScoredReview struct {
	SubmissionID int64  `json:"submission_id"`
	ReviewerID   UserID `json:"reviewer_id"`
	Score        int    `json:"score"`
}

// Reference builders for ledger idempotency keys
func DecisionRef(id string) string {
	return "decision:" + id
}

func DecisionAcceptRef(id string) string {
	return "decision_accept:" + id
}

func DecisionBonusRef(id string) string {
	return "decision_bonus:" + id
}

func DecisionDeclineRef(id string) string {
	return "decision_decline:" + id
}

func DecisionExpireRef(id string) string {
	return "decision_expire:" + id
}

func ReviewRef(reviewID int64) string {
	return fmt.Sprintf("review:%d", reviewID)
}

func SubmissionRef(submissionID int64) string {
	return fmt.Sprintf("submission:%d", submissionID)
}

func WithdrawRef(id string) string {
	return "withdraw:" + id
}

func WithdrawRefundRef(id string) string {
	return "withdraw_refund:" + id
}

// SubmissionStudentRef keys the student reward of a submission
func SubmissionStudentRef(submissionID int64) string {
	return fmt.Sprintf("submission_student:%d", submissionID)
}

// SubmissionStudentRefPrefix matches every student reward row
const SubmissionStudentRefPrefix = "submission_student:"
