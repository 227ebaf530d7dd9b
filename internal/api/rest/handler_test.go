package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teocoin/settlement-engine/internal/api/rest"
	"github.com/teocoin/settlement-engine/internal/api/shared/dto"
	apierrors "github.com/teocoin/settlement-engine/internal/api/shared/errors"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/mirror"
	"github.com/teocoin/settlement-engine/internal/mocks"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(t *testing.T) (*gin.Engine, *mocks.MockAPIExecutor) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockAPIExecutor(ctrl)
	router := gin.New()
	rest.SetupRoutes(router, rest.NewHandler(exec))
	return router, exec
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *apierrors.APIError {
	var resp apierrors.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestCreateDiscountRequest(t *testing.T) {
	router, exec := setupRouter(t)
	body := dto.CreateDiscountRequest{StudentID: 1, TeacherID: 2, CourseID: 3, DiscountPercent: 10, Signature: "0xsig"}

	exec.EXPECT().CreateDiscountRequest(gomock.Any(), body).Return(&domain.DiscountResult{
		DecisionID: "d1",
		State:      domain.DecisionPending,
		TEOCost:    decimal.NewFromInt(10),
		ExpiresAt:  time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
	}, nil)

	rec := doRequest(router, http.MethodPost, "/api/v1/discounts", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result domain.DiscountResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "d1", result.DecisionID)
	assert.True(t, result.TEOCost.Equal(decimal.NewFromInt(10)))
}

func TestCreateDiscountRequest_ValidationFailed(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doRequest(router, http.MethodPost, "/api/v1/discounts", map[string]any{"student_id": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.ErrCodeValidationFailed, decodeError(t, rec).Code)
}

func TestEngineErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"bad discount", domain.ErrBadDiscount, http.StatusBadRequest},
		{"bad signature", domain.ErrBadSignature, http.StatusBadRequest},
		{"insufficient", domain.ErrInsufficient.With("user_id", 1), http.StatusConflict},
		{"wallet missing", domain.ErrWalletMissing, http.StatusUnprocessableEntity},
		{"course unavailable", domain.ErrCourseUnavailable, http.StatusUnprocessableEntity},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"chain down", domain.ErrChainDown, http.StatusServiceUnavailable},
		{"invariant", domain.ErrInvariant.With("user_id", 1), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, exec := setupRouter(t)
			exec.EXPECT().CreateDiscountRequest(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			rec := doRequest(router, http.MethodPost, "/api/v1/discounts",
				dto.CreateDiscountRequest{StudentID: 1, TeacherID: 2, CourseID: 3, DiscountPercent: 10, Signature: "0xsig"})
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, domain.CodeOf(tt.err), decodeError(t, rec).Code)
		})
	}
}

func TestResolveDecision(t *testing.T) {
	router, exec := setupRouter(t)

	exec.EXPECT().ResolveDecision(gomock.Any(), "d1", "ACCEPT_TEO").
		Return(&domain.SettlementSummary{DecisionID: "d1", State: domain.DecisionAccepted}, nil)
	rec := doRequest(router, http.MethodPost, "/api/v1/decisions/d1/resolve", dto.ResolveDecisionRequest{Outcome: "ACCEPT_TEO"})
	assert.Equal(t, http.StatusOK, rec.Code)

	exec.EXPECT().ResolveDecision(gomock.Any(), "d1", "DECLINE_TEO").
		Return(nil, domain.ErrAlreadyDecided.With("decision_id", "d1"))
	rec = doRequest(router, http.MethodPost, "/api/v1/decisions/d1/resolve", dto.ResolveDecisionRequest{Outcome: "DECLINE_TEO"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, domain.CodeAlreadyDecided, apiErr.Code)
	assert.Equal(t, "d1", apiErr.Details["decision_id"])
}

func TestListDecisions(t *testing.T) {
	router, exec := setupRouter(t)

	exec.EXPECT().ListDecisions(gomock.Any(), int64(7), "PENDING", 20, 0).
		Return(&dto.DecisionListResponse{Limit: 20}, nil)
	rec := doRequest(router, http.MethodGet, "/api/v1/teachers/7/decisions?state=pending&limit=20", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/v1/teachers/7/decisions?state=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/v1/teachers/abc/decisions", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetAutoRule(t *testing.T) {
	router, exec := setupRouter(t)

	exec.EXPECT().SetAutoRule(gomock.Any(), int64(2), gomock.Any()).
		DoAndReturn(func(_ any, teacherID int64, req dto.AutoRuleRequest) (*domain.AutoRule, error) {
			require.NotNil(t, req.ThresholdTEO)
			assert.Equal(t, "25", req.ThresholdTEO.String())
			return &domain.AutoRule{TeacherID: domain.UserID(teacherID), Mode: domain.AutoRuleThreshold, ThresholdTEO: req.ThresholdTEO}, nil
		})

	rec := doRequest(router, http.MethodPut, "/api/v1/teachers/2/auto-rule", map[string]any{"mode": "THRESHOLD", "threshold_teo": "25"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListTransactions(t *testing.T) {
	router, exec := setupRouter(t)

	exec.EXPECT().ListTransactions(gomock.Any(), int64(1), gomock.Any()).
		DoAndReturn(func(_ any, _ int64, filter domain.TransactionFilter) (*dto.TransactionListResponse, error) {
			assert.Equal(t, []domain.LedgerKind{domain.KindStake, domain.KindUnstake}, filter.Kinds)
			assert.Equal(t, "decision:", filter.ExternalRefPrefix)
			require.NotNil(t, filter.Since)
			assert.Equal(t, 10, filter.Limit)
			assert.Equal(t, 5, filter.Offset)
			return &dto.TransactionListResponse{Limit: filter.Limit, Offset: filter.Offset}, nil
		})

	rec := doRequest(router, http.MethodGet,
		"/api/v1/users/1/transactions?kind=stake,unstake&external_ref=decision:&since=2026-04-01T00:00:00Z&limit=10&offset=5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/v1/users/1/transactions?kind=gift", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodGet,
		"/api/v1/users/1/transactions?since=2026-04-02T00:00:00Z&until=2026-04-01T00:00:00Z", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStake(t *testing.T) {
	router, exec := setupRouter(t)

	exec.EXPECT().Stake(gomock.Any(), int64(4), gomock.Any()).
		DoAndReturn(func(_ any, userID int64, req dto.AmountRequest) (*domain.StakingInfo, error) {
			assert.True(t, req.Amount.Equal(decimal.NewFromInt(100)))
			assert.Equal(t, "s1", req.ExternalRef)
			info := domain.NewStakingInfo(domain.UserID(userID), req.Amount)
			return &info, nil
		})

	rec := doRequest(router, http.MethodPost, "/api/v1/users/4/stake", map[string]any{"amount": "100", "external_ref": "s1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var info domain.StakingInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "Silver", info.Tier)
}

func TestGetChainBalance_Degraded(t *testing.T) {
	router, exec := setupRouter(t)

	exec.EXPECT().GetChainBalance(gomock.Any(), int64(1)).Return(nil, domain.ErrChainDown)
	rec := doRequest(router, http.MethodGet, "/api/v1/users/1/chain-balance", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, domain.CodeChainDown, decodeError(t, rec).Code)
}

func TestWithdrawToChain(t *testing.T) {
	router, exec := setupRouter(t)
	amount := decimal.RequireFromString("1.5")

	exec.EXPECT().WithdrawToChain(gomock.Any(), int64(1), amount).Return(&mirror.Withdrawal{
		ID:     "w1",
		UserID: 1,
		Amount: amount,
		Status: domain.ChainSubmissionSubmitted,
	}, nil)

	rec := doRequest(router, http.MethodPost, "/api/v1/users/1/withdrawals", map[string]any{"amount": "1.5"})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	exec.EXPECT().WithdrawToChain(gomock.Any(), int64(1), amount).Return(nil, domain.ErrCapabilityMissing)
	rec = doRequest(router, http.MethodPost, "/api/v1/users/1/withdrawals", map[string]any{"amount": "1.5"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDepositFromChain_Unverified(t *testing.T) {
	router, exec := setupRouter(t)

	exec.EXPECT().DepositFromChain(gomock.Any(), int64(1), gomock.Any()).Return(nil, domain.ErrPaymentUnverified)
	rec := doRequest(router, http.MethodPost, "/api/v1/users/1/deposits", map[string]any{"tx_hash": "0xabc", "amount": "3"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	router, exec := setupRouter(t)

	exec.EXPECT().ChainConnected().Return(false)
	rec := doRequest(router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.False(t, resp.ChainConnected)
}
