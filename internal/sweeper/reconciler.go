package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/mirror"
)

const (
	DefaultReconcileInterval = 30 * time.Second
	DefaultReconcileBatch    = 50
	DefaultStaleAfter        = 10 * time.Minute
)

// ReconcilerConfig holds configuration for the chain submission reconciler
type ReconcilerConfig struct {
	Interval       time.Duration // Time to sleep between cycles
	BatchSize      int           // Submissions polled per cycle
	WorkerPoolSize int           // Concurrent receipt lookups
	StaleAfter     time.Duration // PENDING rows older than this are reported

	// Retry of a single receipt lookup while the chain is down
	RetryInitialInterval time.Duration
	RetryMaxElapsedTime  time.Duration
}

// reconciler polls receipts of SUBMITTED withdrawals until they confirm or revert
type reconciler struct {
	config    *ReconcilerConfig
	lister    SubmissionLister
	mirror    mirror.Service
	clock     adapter.Clock
	pool      pond.Pool
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewReconciler creates a new chain submission reconciler
func NewReconciler(config *ReconcilerConfig, lister SubmissionLister, svc mirror.Service, clock adapter.Clock) Sweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultReconcileInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultReconcileBatch
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 4
	}
	if config.StaleAfter <= 0 {
		config.StaleAfter = DefaultStaleAfter
	}
	if config.RetryInitialInterval <= 0 {
		config.RetryInitialInterval = 2 * time.Second
	}
	if config.RetryMaxElapsedTime <= 0 {
		config.RetryMaxElapsedTime = 2 * time.Minute
	}
	return &reconciler{
		config:    config,
		lister:    lister,
		mirror:    svc,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *reconciler) Name() string {
	return "chain-submission-reconciler"
}

// Start runs reconcile cycles until the context is canceled or Stop is called
func (s *reconciler) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting chain submission reconciler",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
	)

	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Chain submission reconciler stopping due to context cancellation", zap.Error(ctx.Err()))
			s.cleanup()
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Chain submission reconciler stop requested")
			s.cleanup()
			return nil
		default:
			if err := s.runCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorCtx(ctx, err)
			}
			s.sleep(ctx, s.config.Interval)
		}
	}
}

// cleanup stops the worker pool and waits for tasks to complete
func (s *reconciler) cleanup() {
	if s.pool != nil {
		s.pool.StopAndWait()
	}
}

// Stop gracefully stops the reconciler with timeout support
func (s *reconciler) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping chain submission reconciler")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Chain submission reconciler stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Chain submission reconciler stop interrupted by context timeout")
		return ctx.Err()
	}
}

func (s *reconciler) runCycle(ctx context.Context) error {
	s.reportStale(ctx)

	submissions, err := s.lister.ListChainSubmissions(ctx, string(domain.ChainSubmissionSubmitted), s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list submitted withdrawals: %w", err)
	}
	if len(submissions) == 0 {
		return nil
	}

	var confirmed, failed, waiting atomic.Int32
	group := s.pool.NewGroup()
	for _, sub := range submissions {
		id := sub.ID
		group.Submit(func() {
			w, err := s.reconcileWithRetry(ctx, id)
			if err != nil {
				logger.ErrorCtx(ctx, fmt.Errorf("failed to reconcile withdrawal: %w", err), zap.String("withdrawalID", id))
				return
			}
			switch w.Status {
			case domain.ChainSubmissionConfirmed:
				confirmed.Add(1)
			case domain.ChainSubmissionFailed:
				failed.Add(1)
			default:
				waiting.Add(1)
			}
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Reconcile cycle completed",
		zap.Int32("confirmed", confirmed.Load()),
		zap.Int32("failed", failed.Load()),
		zap.Int32("waiting", waiting.Load()),
	)
	return nil
}

// reconcileWithRetry retries the receipt lookup while the chain is unreachable
func (s *reconciler) reconcileWithRetry(ctx context.Context, id string) (*mirror.Withdrawal, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.RetryInitialInterval
	b.MaxElapsedTime = s.config.RetryMaxElapsedTime
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	var withdrawal *mirror.Withdrawal
	operation := func() error {
		w, err := s.mirror.Reconcile(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrChainDown) {
				return err
			}
			return backoff.Permanent(err)
		}
		withdrawal = w
		return nil
	}

	notify := func(err error, d time.Duration) {
		logger.WarnCtx(ctx, "Receipt lookup failed, retrying",
			zap.String("withdrawalID", id),
			zap.Error(err),
			zap.Duration("retry_in", d),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return withdrawal, nil
}

// reportStale warns about PENDING rows whose mint outcome was never recorded
func (s *reconciler) reportStale(ctx context.Context) {
	pending, err := s.lister.ListChainSubmissions(ctx, string(domain.ChainSubmissionPending), s.config.BatchSize)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to list pending withdrawals: %w", err))
		return
	}
	cutoff := s.clock.Now().Add(-s.config.StaleAfter)
	for _, sub := range pending {
		if sub.CreatedAt.Before(cutoff) {
			logger.WarnCtx(ctx, "Withdrawal stuck in PENDING, needs manual review",
				zap.String("withdrawalID", sub.ID),
				zap.Int64("userID", sub.UserID),
				zap.Time("createdAt", sub.CreatedAt),
			)
		}
	}
}

// sleep sleeps for the given duration but can be interrupted by context cancellation or stop
func (s *reconciler) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
