package dto

import (
	"github.com/shopspring/decimal"

	"github.com/teocoin/settlement-engine/internal/domain"
)

// TransactionListResponse is a page of ledger entries, newest first
type TransactionListResponse struct {
	Items  []domain.LedgerEntry `json:"items"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// DecisionListResponse is a page of decisions, newest first
type DecisionListResponse struct {
	Items  []domain.Decision `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// ChainBalanceResponse is the on-chain token balance of a user's wallet
type ChainBalanceResponse struct {
	UserID  int64           `json:"user_id"`
	Wallet  string          `json:"wallet"`
	Balance decimal.Decimal `json:"balance"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status         string `json:"status"`
	ChainConnected bool   `json:"chain_connected"`
}
