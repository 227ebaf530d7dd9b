package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes. Every /api/v1 route runs behind
// the given middleware (service auth, then rate limiting when enabled).
func SetupRoutes(router *gin.Engine, handler Handler, v1Middleware ...gin.HandlerFunc) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1", v1Middleware...)
	{
		// Discounts and decisions
		v1.POST("/discounts", handler.CreateDiscountRequest)
		v1.GET("/decisions/:id", handler.GetDecision)
		v1.POST("/decisions/:id/resolve", handler.ResolveDecision)

		// Teacher policy
		v1.GET("/teachers/:id/decisions", handler.ListDecisions)
		v1.GET("/teachers/:id/auto-rule", handler.GetAutoRule)
		v1.PUT("/teachers/:id/auto-rule", handler.SetAutoRule)

		// Rewards
		v1.POST("/reviews/scored", handler.ObserveScoredReview)

		// Ledger
		v1.GET("/users/:id/balance", handler.GetBalance)
		v1.GET("/users/:id/transactions", handler.ListTransactions)
		v1.POST("/users/:id/stake", handler.Stake)
		v1.POST("/users/:id/unstake", handler.Unstake)
		v1.GET("/users/:id/staking", handler.GetStakingInfo)

		// Chain mirror
		v1.GET("/users/:id/chain-balance", handler.GetChainBalance)
		v1.POST("/users/:id/withdrawals", handler.WithdrawToChain)
		v1.POST("/users/:id/deposits", handler.DepositFromChain)
		v1.GET("/withdrawals/:id", handler.GetWithdrawal)
		v1.POST("/withdrawals/:id/reconcile", handler.ReconcileWithdrawal)
	}
}
