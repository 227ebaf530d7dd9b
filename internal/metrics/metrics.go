// Package metrics holds the prometheus collectors of the settlement engine
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	LedgerMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teo_ledger_mutations_total",
			Help: "Ledger mutations by kind and result (applied, replayed, rejected)",
		},
		[]string{"kind", "result"},
	)
	DecisionsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teo_decisions_resolved_total",
			Help: "Decisions moved to a terminal state",
		},
		[]string{"state"},
	)
	MintAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teo_mint_attempts_total",
			Help: "Mint transaction attempts by result",
		},
		[]string{"result"},
	)
	RewardsCredited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teo_rewards_credited_total",
			Help: "Peer-review reward credits by recipient role",
		},
		[]string{"role"},
	)
	SweeperExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "teo_sweeper_expired_total",
			Help: "Decisions expired by the sweeper",
		},
	)
	ChainRPCSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teo_chain_rpc_seconds",
			Help:    "Latency of chain JSON-RPC calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	RPCThrottleWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "teo_chain_rpc_throttle_wait_seconds",
			Help:    "Time spent waiting for a chain RPC token",
			Buckets: prometheus.DefBuckets,
		},
	)
	HTTPRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teo_http_request_seconds",
			Help:    "Latency of API requests by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "teo_http_rate_limited_total",
			Help: "API requests rejected by the rate limiter",
		},
	)
)

func init() {
	prometheus.MustRegister(LedgerMutations)
	prometheus.MustRegister(DecisionsResolved)
	prometheus.MustRegister(MintAttempts)
	prometheus.MustRegister(RewardsCredited)
	prometheus.MustRegister(SweeperExpired)
	prometheus.MustRegister(ChainRPCSeconds)
	prometheus.MustRegister(RPCThrottleWait)
	prometheus.MustRegister(HTTPRequestSeconds)
	prometheus.MustRegister(RateLimited)
}

// ObserveRPC records the latency of a chain call started at start
func ObserveRPC(method string, start time.Time) {
	ChainRPCSeconds.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
