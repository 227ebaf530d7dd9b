package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/api/shared/dto"
	"github.com/teocoin/settlement-engine/internal/catalog"
	"github.com/teocoin/settlement-engine/internal/chain"
	"github.com/teocoin/settlement-engine/internal/discount"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/ledger"
	"github.com/teocoin/settlement-engine/internal/mirror"
	"github.com/teocoin/settlement-engine/internal/reward"
	"github.com/teocoin/settlement-engine/internal/sweeper"
)

// Executor is the use-case layer shared by the REST handlers and teoctl
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// Discounts and decisions
	CreateDiscountRequest(ctx context.Context, req dto.CreateDiscountRequest) (*domain.DiscountResult, error)
	GetDecision(ctx context.Context, decisionID string) (*domain.Decision, error)
	ResolveDecision(ctx context.Context, decisionID string, outcome string) (*domain.SettlementSummary, error)
	ListDecisions(ctx context.Context, teacherID int64, state string, limit int, offset int) (*dto.DecisionListResponse, error)
	GetAutoRule(ctx context.Context, teacherID int64) (*domain.AutoRule, error)
	SetAutoRule(ctx context.Context, teacherID int64, req dto.AutoRuleRequest) (*domain.AutoRule, error)
	SweepExpired(ctx context.Context, limit int) (sweeper.ExpiryResult, error)

	// Rewards
	ObserveScoredReview(ctx context.Context, req dto.ScoredReviewRequest) (*reward.Distribution, error)

	// Ledger
	GetBalance(ctx context.Context, userID int64) (*domain.Balance, error)
	ListTransactions(ctx context.Context, userID int64, filter domain.TransactionFilter) (*dto.TransactionListResponse, error)
	Stake(ctx context.Context, userID int64, req dto.AmountRequest) (*domain.StakingInfo, error)
	Unstake(ctx context.Context, userID int64, req dto.AmountRequest) (*domain.StakingInfo, error)
	GetStakingInfo(ctx context.Context, userID int64) (*domain.StakingInfo, error)

	// Chain
	ChainConnected() bool
	GetChainBalance(ctx context.Context, userID int64) (*dto.ChainBalanceResponse, error)
	WithdrawToChain(ctx context.Context, userID int64, amount decimal.Decimal) (*mirror.Withdrawal, error)
	GetWithdrawal(ctx context.Context, id string) (*mirror.Withdrawal, error)
	ReconcileWithdrawal(ctx context.Context, id string) (*mirror.Withdrawal, error)
	DepositFromChain(ctx context.Context, userID int64, req dto.DepositRequest) (*domain.LedgerEntry, error)
}

// Deps are the engine components the executor delegates to
type Deps struct {
	Ledger    ledger.Ledger
	Rewards   reward.Engine
	Discounts discount.Orchestrator
	Mirror    mirror.Service
	Catalog   catalog.Catalog
	// Chain reports connectivity; Balances reads token balances (possibly cached)
	Chain     chain.Reader
	Balances  chain.BalanceReader
	Decisions sweeper.DecisionLister
	Clock     adapter.Clock
}

type executor struct {
	Deps
}

func NewExecutor(deps Deps) Executor {
	if deps.Balances == nil {
		deps.Balances = deps.Chain
	}
	return &executor{Deps: deps}
}

func (e *executor) CreateDiscountRequest(ctx context.Context, req dto.CreateDiscountRequest) (*domain.DiscountResult, error) {
	return e.Discounts.CreateDiscountRequest(ctx, req.ToDomain())
}

func (e *executor) GetDecision(ctx context.Context, decisionID string) (*domain.Decision, error) {
	return e.Discounts.GetDecision(ctx, decisionID)
}

func (e *executor) ResolveDecision(ctx context.Context, decisionID string, outcome string) (*domain.SettlementSummary, error) {
	parsed, err := domain.ParseOutcome(outcome)
	if err != nil {
		return nil, err
	}
	return e.Discounts.ResolveDecision(ctx, decisionID, parsed)
}

func (e *executor) ListDecisions(ctx context.Context, teacherID int64, state string, limit int, offset int) (*dto.DecisionListResponse, error) {
	if limit <= 0 {
		limit = ledger.DefaultListLimit
	}
	limit = min(limit, ledger.MaxListLimit)

	decisions, err := e.Discounts.ListDecisions(ctx, teacherID, domain.DecisionState(strings.ToUpper(state)), limit, offset)
	if err != nil {
		return nil, err
	}
	return &dto.DecisionListResponse{Items: decisions, Limit: limit, Offset: offset}, nil
}

func (e *executor) GetAutoRule(ctx context.Context, teacherID int64) (*domain.AutoRule, error) {
	return e.Discounts.GetAutoRule(ctx, teacherID)
}

func (e *executor) SetAutoRule(ctx context.Context, teacherID int64, req dto.AutoRuleRequest) (*domain.AutoRule, error) {
	return e.Discounts.SetAutoRule(ctx, domain.AutoRule{
		TeacherID:    domain.UserID(teacherID),
		Mode:         domain.AutoRuleMode(strings.ToUpper(req.Mode)),
		ThresholdTEO: req.ThresholdTEO,
	})
}

func (e *executor) SweepExpired(ctx context.Context, limit int) (sweeper.ExpiryResult, error) {
	if e.Decisions == nil {
		return sweeper.ExpiryResult{}, fmt.Errorf("decision lister not configured")
	}
	if limit <= 0 {
		limit = sweeper.DefaultExpiryBatchSize
	}
	return sweeper.ExpireDue(ctx, e.Decisions, e.Discounts, e.Clock.Now(), limit)
}

func (e *executor) ObserveScoredReview(ctx context.Context, req dto.ScoredReviewRequest) (*reward.Distribution, error) {
	if req.Score == nil {
		return nil, domain.ErrBadRequest.Withf("score is required")
	}
	return e.Rewards.ObserveScoredReview(ctx, domain.ScoredReview{
		SubmissionID: req.SubmissionID,
		ReviewerID:   domain.UserID(req.ReviewerID),
		Score:        *req.Score,
	})
}

func (e *executor) GetBalance(ctx context.Context, userID int64) (*domain.Balance, error) {
	b, err := e.Ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (e *executor) ListTransactions(ctx context.Context, userID int64, filter domain.TransactionFilter) (*dto.TransactionListResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = ledger.DefaultListLimit
	}
	filter.Limit = min(filter.Limit, ledger.MaxListLimit)

	entries, err := e.Ledger.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return &dto.TransactionListResponse{Items: entries, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (e *executor) Stake(ctx context.Context, userID int64, req dto.AmountRequest) (*domain.StakingInfo, error) {
	if _, err := e.Ledger.Stake(ctx, userID, req.Amount, req.ExternalRef); err != nil {
		return nil, err
	}
	return e.GetStakingInfo(ctx, userID)
}

func (e *executor) Unstake(ctx context.Context, userID int64, req dto.AmountRequest) (*domain.StakingInfo, error) {
	if _, err := e.Ledger.Unstake(ctx, userID, req.Amount, req.ExternalRef); err != nil {
		return nil, err
	}
	return e.GetStakingInfo(ctx, userID)
}

func (e *executor) GetStakingInfo(ctx context.Context, userID int64) (*domain.StakingInfo, error) {
	info, err := e.Ledger.GetStakingInfo(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (e *executor) ChainConnected() bool {
	return e.Chain != nil && e.Chain.Connected()
}

func (e *executor) GetChainBalance(ctx context.Context, userID int64) (*dto.ChainBalanceResponse, error) {
	if e.Balances == nil {
		return nil, domain.ErrChainDown
	}
	wallet, err := e.Catalog.GetWallet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	if wallet == "" {
		return nil, domain.ErrWalletMissing.With("user_id", userID)
	}

	balance, err := e.Balances.GetBalance(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return &dto.ChainBalanceResponse{UserID: userID, Wallet: wallet, Balance: balance}, nil
}

func (e *executor) WithdrawToChain(ctx context.Context, userID int64, amount decimal.Decimal) (*mirror.Withdrawal, error) {
	return e.Mirror.WithdrawToChain(ctx, userID, amount)
}

func (e *executor) GetWithdrawal(ctx context.Context, id string) (*mirror.Withdrawal, error) {
	return e.Mirror.GetWithdrawal(ctx, id)
}

func (e *executor) ReconcileWithdrawal(ctx context.Context, id string) (*mirror.Withdrawal, error) {
	return e.Mirror.Reconcile(ctx, id)
}

func (e *executor) DepositFromChain(ctx context.Context, userID int64, req dto.DepositRequest) (*domain.LedgerEntry, error) {
	return e.Mirror.DepositFromChain(ctx, userID, req.TxHash, req.Amount)
}
