package sweeper

import (
	"context"
	"time"

	"github.com/teocoin/settlement-engine/internal/store/schema"
)

// Sweeper defines the interface for sweeper implementations
// Sweepers are long-running background tasks that perform periodic maintenance
//
//go:generate mockgen -source=sweeper.go -destination=../mocks/sweeper.go -package=mocks -mock_names=Sweeper=MockSweeper,DecisionLister=MockDecisionLister,SubmissionLister=MockSubmissionLister
type Sweeper interface {
	// Start begins the sweeper's main loop
	// This is a blocking call that runs until the context is canceled
	Start(ctx context.Context) error

	// Stop gracefully stops the sweeper
	// This should wait for any in-progress work to complete
	Stop(ctx context.Context) error

	// Name returns the sweeper's name for logging and identification
	Name() string
}

// DecisionLister finds PENDING decisions past their expiry
type DecisionLister interface {
	ListExpiredDecisionIDs(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// SubmissionLister finds chain submissions in a given status
type SubmissionLister interface {
	ListChainSubmissions(ctx context.Context, status string, limit int) ([]schema.ChainSubmission, error)
}
