package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/discount"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/metrics"
)

const (
	DefaultExpiryInterval  = 60 * time.Second
	DefaultExpiryBatchSize = 100
)

// ExpirySweeperConfig holds configuration for the decision expiry sweeper
type ExpirySweeperConfig struct {
	Interval  time.Duration // Time to sleep once no expired decisions are left
	BatchSize int           // Decisions expired per cycle
}

// expirySweeper moves PENDING decisions past expires_at to EXPIRED
type expirySweeper struct {
	config    *ExpirySweeperConfig
	lister    DecisionLister
	orch      discount.Orchestrator
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewExpirySweeper creates a new decision expiry sweeper
func NewExpirySweeper(config *ExpirySweeperConfig, lister DecisionLister, orch discount.Orchestrator, clock adapter.Clock) Sweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultExpiryInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultExpiryBatchSize
	}
	return &expirySweeper{
		config:    config,
		lister:    lister,
		orch:      orch,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *expirySweeper) Name() string {
	return "decision-expiry-sweeper"
}

// Start runs sweep cycles until the context is canceled or Stop is called
func (s *expirySweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting decision expiry sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Decision expiry sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Decision expiry sweeper stop requested")
			return nil
		default:
			full, err := s.runSweepCycle(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorCtx(ctx, err)
			}
			// a full batch means more may be waiting
			if full && err == nil {
				continue
			}
			s.sleep(ctx, s.config.Interval)
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *expirySweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping decision expiry sweeper")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Decision expiry sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Decision expiry sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// ExpiryResult counts the outcome of one expiry batch
type ExpiryResult struct {
	Listed  int
	Expired int
	Skipped int
	Failed  int
}

// ExpireDue expires up to limit PENDING decisions whose expires_at <= now, oldest first.
// Each decision settles in its own transaction; a failure is logged and the batch continues.
func ExpireDue(ctx context.Context, lister DecisionLister, orch discount.Orchestrator, now time.Time, limit int) (ExpiryResult, error) {
	var result ExpiryResult
	ids, err := lister.ListExpiredDecisionIDs(ctx, now, limit)
	if err != nil {
		return result, fmt.Errorf("failed to list expired decisions: %w", err)
	}
	result.Listed = len(ids)

	for _, id := range ids {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		_, err := orch.ExpireDecision(ctx, id)
		switch {
		case err == nil:
			result.Expired++
			metrics.SweeperExpired.Inc()
		case errors.Is(err, domain.ErrAlreadyDecided):
			// the teacher resolved it between list and lock
			result.Skipped++
		default:
			result.Failed++
			logger.ErrorCtx(ctx, fmt.Errorf("failed to expire decision: %w", err), zap.String("decisionID", id))
		}
	}
	return result, nil
}

// runSweepCycle expires one batch and reports whether the batch was full
func (s *expirySweeper) runSweepCycle(ctx context.Context) (bool, error) {
	result, err := ExpireDue(ctx, s.lister, s.orch, s.clock.Now(), s.config.BatchSize)
	if err != nil {
		return false, err
	}
	if result.Listed == 0 {
		logger.DebugCtx(ctx, "No expired decisions")
		return false, nil
	}

	logger.InfoCtx(ctx, "Expiry sweep cycle completed",
		zap.Int("expired", result.Expired),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	// a batch made only of failures would spin
	return result.Listed == s.config.BatchSize && result.Failed < result.Listed, nil
}

// sleep sleeps for the given duration but can be interrupted by context cancellation or stop
func (s *expirySweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
