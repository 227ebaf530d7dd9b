package discount

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/catalog"
	"github.com/teocoin/settlement-engine/internal/chain"
	"github.com/teocoin/settlement-engine/internal/decision"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/ledger"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/messaging"
	"github.com/teocoin/settlement-engine/internal/store"
	"github.com/teocoin/settlement-engine/internal/store/schema"
)

// Config holds the settlement parameters of the orchestrator
type Config struct {
	// ReservePoolUserID is the ledger user that funds teacher bonuses and absorbs declined discounts
	ReservePoolUserID int64
	DecisionTTL       time.Duration
	// TokenContractAddress is bound into the signed discount message
	TokenContractAddress string
}

// Orchestrator runs the discount request lifecycle
//
//go:generate mockgen -source=orchestrator.go -destination=../mocks/discount.go -package=mocks -mock_names=Orchestrator=MockDiscountOrchestrator
type Orchestrator interface {
	// CreateDiscountRequest debits the student and opens a PENDING decision,
	// settling it right away when the teacher's auto rule fires
	CreateDiscountRequest(ctx context.Context, req domain.DiscountRequest) (*domain.DiscountResult, error)

	// ResolveDecision settles a PENDING decision with the teacher's choice.
	// Repeating the recorded outcome returns the recorded summary.
	ResolveDecision(ctx context.Context, decisionID string, outcome domain.Outcome) (*domain.SettlementSummary, error)

	// ExpireDecision settles an overdue PENDING decision the way a decline does
	ExpireDecision(ctx context.Context, decisionID string) (*domain.SettlementSummary, error)

	// GetDecision returns a decision with its snapshot
	GetDecision(ctx context.Context, decisionID string) (*domain.Decision, error)

	// ListDecisions lists a teacher's decisions, newest first. An empty state lists all.
	ListDecisions(ctx context.Context, teacherID int64, state domain.DecisionState, limit, offset int) ([]domain.Decision, error)

	// SetAutoRule creates or replaces a teacher's auto rule
	SetAutoRule(ctx context.Context, rule domain.AutoRule) (*domain.AutoRule, error)

	// GetAutoRule returns the teacher's auto rule; MANUAL when none is set
	GetAutoRule(ctx context.Context, teacherID int64) (*domain.AutoRule, error)
}

type orchestrator struct {
	cfg       Config
	contract  common.Address
	store     store.Store
	ledger    ledger.Ledger
	catalog   catalog.Catalog
	verifier  chain.SignatureVerifier
	publisher messaging.Publisher
	clock     adapter.Clock
	json      adapter.JSON
}

// New creates a discount orchestrator
func New(
	cfg Config,
	st store.Store,
	ldg ledger.Ledger,
	cat catalog.Catalog,
	verifier chain.SignatureVerifier,
	pub messaging.Publisher,
	clock adapter.Clock,
	json adapter.JSON,
) (Orchestrator, error) {
	if cfg.ReservePoolUserID <= 0 {
		return nil, fmt.Errorf("reserve pool user id must be positive")
	}
	if !common.IsHexAddress(cfg.TokenContractAddress) {
		return nil, fmt.Errorf("invalid token contract address %q", cfg.TokenContractAddress)
	}
	if cfg.DecisionTTL <= 0 {
		cfg.DecisionTTL = domain.DefaultDecisionTTL
	}
	return &orchestrator{
		cfg:       cfg,
		contract:  common.HexToAddress(cfg.TokenContractAddress),
		store:     st,
		ledger:    ldg,
		catalog:   cat,
		verifier:  verifier,
		publisher: pub,
		clock:     clock,
		json:      json,
	}, nil
}

func (o *orchestrator) CreateDiscountRequest(ctx context.Context, req domain.DiscountRequest) (*domain.DiscountResult, error) {
	studentID, teacherID := int64(req.StudentID), int64(req.TeacherID)

	if !domain.ValidDiscountPercent(req.DiscountPercent) {
		return nil, domain.ErrBadDiscount.With("discount_percent", req.DiscountPercent)
	}
	if studentID == teacherID {
		return nil, domain.ErrWalletMissing.Withf("student and teacher must use different wallets").With("user_id", studentID)
	}

	// read phase: catalog and staking lookups happen before the transaction
	course, err := o.catalog.GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if !course.Available() {
		return nil, domain.ErrCourseUnavailable.With("course_id", req.CourseID)
	}
	if course.TeacherID != teacherID {
		return nil, domain.ErrCourseUnavailable.Withf("course is taught by another teacher").
			With("course_id", req.CourseID).
			With("teacher_id", teacherID)
	}

	studentWallet, err := o.wallet(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if _, err := o.wallet(ctx, teacherID); err != nil {
		return nil, err
	}

	costWei := domain.DiscountCostWei(course.PriceEUR, req.DiscountPercent)
	bonusWei := domain.TeacherBonusWei(costWei)
	cost, err := domain.WeiToTEO(costWei)
	if err != nil {
		return nil, err
	}
	bonus, err := domain.WeiToTEO(bonusWei)
	if err != nil {
		return nil, err
	}

	hash := chain.DiscountMessageHash(common.HexToAddress(studentWallet), req.CourseID, costWei, o.contract)
	if !o.verifier.VerifySignature(hash.Bytes(), req.Signature, studentWallet) {
		return nil, domain.ErrBadSignature.With("user_id", studentID)
	}

	staking, err := o.ledger.GetStakingInfo(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	now := o.clock.Now().UTC().Truncate(time.Microsecond)
	decisionID := uuid.NewString()
	snapshot := &schema.DiscountSnapshot{
		ID:                    uuid.NewString(),
		CourseID:              req.CourseID,
		TeacherID:             teacherID,
		StudentID:             studentID,
		PriceEUR:              course.PriceEUR,
		DiscountPercent:       req.DiscountPercent,
		TEOCostWei:            costWei.String(),
		TeacherBonusWei:       bonusWei.String(),
		TeacherCommissionRate: staking.CommissionRate,
		TeacherStakingTier:    staking.Tier,
		CreatedAt:             now,
	}
	row := &schema.Decision{
		ID:        decisionID,
		TeacherID: teacherID,
		State:     string(domain.DecisionPending),
		ExpiresAt: decision.ExpiresAt(now, o.cfg.DecisionTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = o.store.WithTx(ctx, func(tx store.Store) error {
		_, err := o.ledger.Apply(ctx, tx, ledger.Mutation{
			UserID:      studentID,
			Kind:        domain.KindDebitDiscount,
			Delta:       cost.Neg(),
			ExternalRef: domain.DecisionRef(decisionID),
			CourseID:    &req.CourseID,
			Metadata: map[string]any{
				"discount_percent": req.DiscountPercent,
				"teo_cost_wei":     costWei.String(),
			},
		})
		if err != nil {
			return err
		}
		return tx.CreateDecision(ctx, snapshot, row)
	})
	if err != nil {
		return nil, err
	}

	result := &domain.DiscountResult{
		DecisionID:      decisionID,
		State:           domain.DecisionPending,
		TEOCost:         cost,
		TeacherBonus:    bonus,
		TEOCostWei:      costWei.String(),
		TeacherBonusWei: bonusWei.String(),
		ExpiresAt:       row.ExpiresAt,
	}
	logger.InfoCtx(ctx, "Discount request created",
		zap.String("decisionID", decisionID),
		zap.Int64("studentID", studentID),
		zap.Int64("teacherID", teacherID),
		zap.Int64("courseID", req.CourseID),
		zap.String("teoCost", cost.String()))
	messaging.PublishBestEffort(ctx, o.publisher, messaging.NewEvent(messaging.EventDecisionCreated, now, result))

	o.applyAutoRule(ctx, teacherID, result, costWei, bonusWei)
	return result, nil
}

// applyAutoRule settles the new decision when the teacher's rule fires.
// A failure leaves the decision PENDING for a manual choice.
func (o *orchestrator) applyAutoRule(ctx context.Context, teacherID int64, result *domain.DiscountResult, costWei, bonusWei *big.Int) {
	rule, err := o.GetAutoRule(ctx, teacherID)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to load auto rule, decision left pending",
			zap.Error(err),
			zap.String("decisionID", result.DecisionID))
		return
	}

	outcome, ok := decision.EvaluateAutoRule(rule, costWei, bonusWei)
	if !ok {
		return
	}

	summary, err := o.resolve(ctx, result.DecisionID, outcome)
	if err != nil {
		logger.WarnCtx(ctx, "Auto rule resolution failed, decision left pending",
			zap.Error(err),
			zap.String("decisionID", result.DecisionID),
			zap.String("outcome", string(outcome)))
		return
	}
	result.State = summary.State
}

func (o *orchestrator) wallet(ctx context.Context, userID int64) (string, error) {
	wallet, err := o.catalog.GetWallet(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load wallet: %w", err)
	}
	if wallet == "" || !common.IsHexAddress(wallet) {
		return "", domain.ErrWalletMissing.With("user_id", userID)
	}
	return wallet, nil
}
