package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teocoin/settlement-engine/internal/api/shared/dto"
	"github.com/teocoin/settlement-engine/internal/api/shared/executor"
	"github.com/teocoin/settlement-engine/internal/domain"
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// CreateDiscountRequest verifies the student signature, prices the course and opens a PENDING decision
	// POST /api/v1/discounts
	CreateDiscountRequest(c *gin.Context)

	// GetDecision returns a decision with its snapshot and, once terminal, its settlement summary
	// GET /api/v1/decisions/:id
	GetDecision(c *gin.Context)

	// ResolveDecision applies ACCEPT_TEO or DECLINE_TEO to a PENDING decision
	// POST /api/v1/decisions/:id/resolve
	ResolveDecision(c *gin.Context)

	// ListDecisions lists a teacher's decisions, newest first
	// GET /api/v1/teachers/:id/decisions?state=<state>&limit=<limit>&offset=<offset>
	ListDecisions(c *gin.Context)

	// GetAutoRule returns the teacher's auto rule (MANUAL when none is set)
	// GET /api/v1/teachers/:id/auto-rule
	GetAutoRule(c *gin.Context)

	// SetAutoRule replaces the teacher's auto rule
	// PUT /api/v1/teachers/:id/auto-rule
	SetAutoRule(c *gin.Context)

	// ObserveScoredReview records a review score and distributes rewards once the submission completes
	// POST /api/v1/reviews/scored
	ObserveScoredReview(c *gin.Context)

	// GET /api/v1/users/:id/balance
	GetBalance(c *gin.Context)

	// ListTransactions lists ledger entries, newest first
	// GET /api/v1/users/:id/transactions?kind=<kind1>,<kind2>&external_ref=<prefix>&since=<rfc3339>&until=<rfc3339>&limit=<limit>&offset=<offset>
	ListTransactions(c *gin.Context)

	// POST /api/v1/users/:id/stake
	Stake(c *gin.Context)

	// POST /api/v1/users/:id/unstake
	Unstake(c *gin.Context)

	// GET /api/v1/users/:id/staking
	GetStakingInfo(c *gin.Context)

	// GetChainBalance reads the on-chain token balance of the user's wallet
	// GET /api/v1/users/:id/chain-balance
	GetChainBalance(c *gin.Context)

	// WithdrawToChain debits the ledger and mints the amount to the user's wallet
	// POST /api/v1/users/:id/withdrawals
	WithdrawToChain(c *gin.Context)

	// DepositFromChain verifies a transfer to the platform wallet and credits the ledger
	// POST /api/v1/users/:id/deposits
	DepositFromChain(c *gin.Context)

	// GET /api/v1/withdrawals/:id
	GetWithdrawal(c *gin.Context)

	// ReconcileWithdrawal polls the mint receipt of a SUBMITTED withdrawal
	// POST /api/v1/withdrawals/:id/reconcile
	ReconcileWithdrawal(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{executor: exec}
}

func (h *handler) CreateDiscountRequest(c *gin.Context) {
	var req dto.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.executor.CreateDiscountRequest(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *handler) GetDecision(c *gin.Context) {
	decisionID := c.Param("id")
	if decisionID == "" {
		respondBadRequest(c, "Decision ID is required")
		return
	}

	decision, err := h.executor.GetDecision(c.Request.Context(), decisionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, decision)
}

func (h *handler) ResolveDecision(c *gin.Context) {
	decisionID := c.Param("id")
	if decisionID == "" {
		respondBadRequest(c, "Decision ID is required")
		return
	}

	var req dto.ResolveDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	summary, err := h.executor.ResolveDecision(c.Request.Context(), decisionID, req.Outcome)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *handler) ListDecisions(c *gin.Context) {
	teacherID, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid teacher ID", err.Error())
		return
	}

	params, err := ParseListDecisionsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	response, err := h.executor.ListDecisions(c.Request.Context(), teacherID, params.State, params.Limit, params.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *handler) GetAutoRule(c *gin.Context) {
	teacherID, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid teacher ID", err.Error())
		return
	}

	rule, err := h.executor.GetAutoRule(c.Request.Context(), teacherID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (h *handler) SetAutoRule(c *gin.Context) {
	teacherID, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid teacher ID", err.Error())
		return
	}

	var req dto.AutoRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	rule, err := h.executor.SetAutoRule(c.Request.Context(), teacherID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (h *handler) ObserveScoredReview(c *gin.Context) {
	var req dto.ScoredReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	distribution, err := h.executor.ObserveScoredReview(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, distribution)
}

func (h *handler) GetBalance(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid user ID", err.Error())
		return
	}

	balance, err := h.executor.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

func (h *handler) ListTransactions(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid user ID", err.Error())
		return
	}

	params, err := ParseListTransactionsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if err := params.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	response, err := h.executor.ListTransactions(c.Request.Context(), userID, params.Filter())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *handler) Stake(c *gin.Context) {
	h.staking(c, h.executor.Stake)
}

func (h *handler) Unstake(c *gin.Context) {
	h.staking(c, h.executor.Unstake)
}

// staking runs stake or unstake and returns the resulting staking position
func (h *handler) staking(c *gin.Context, op func(ctx context.Context, userID int64, req dto.AmountRequest) (*domain.StakingInfo, error)) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid user ID", err.Error())
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	info, err := op(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *handler) GetStakingInfo(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid user ID", err.Error())
		return
	}

	info, err := h.executor.GetStakingInfo(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *handler) GetChainBalance(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid user ID", err.Error())
		return
	}

	balance, err := h.executor.GetChainBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

func (h *handler) WithdrawToChain(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid user ID", err.Error())
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	withdrawal, err := h.executor.WithdrawToChain(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, withdrawal)
}

func (h *handler) DepositFromChain(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid user ID", err.Error())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	entry, err := h.executor.DepositFromChain(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *handler) GetWithdrawal(c *gin.Context) {
	withdrawal, err := h.executor.GetWithdrawal(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, withdrawal)
}

func (h *handler) ReconcileWithdrawal(c *gin.Context) {
	withdrawal, err := h.executor.ReconcileWithdrawal(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, withdrawal)
}

// HealthCheck reports degraded while the chain gateway is disconnected.
// The ledger keeps serving, so the status code stays 200.
func (h *handler) HealthCheck(c *gin.Context) {
	response := dto.HealthResponse{Status: "healthy", ChainConnected: h.executor.ChainConnected()}
	if !response.ChainConnected {
		response.Status = "degraded"
	}
	c.JSON(http.StatusOK, response)
}
