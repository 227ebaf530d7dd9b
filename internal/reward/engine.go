package reward

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/catalog"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/ledger"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/messaging"
	"github.com/teocoin/settlement-engine/internal/metrics"
	"github.com/teocoin/settlement-engine/internal/store"
)

const (
	MinScore = 0
	MaxScore = 10
)

// ReviewerReward is the flat credit paid for one scored review
type ReviewerReward struct {
	ReviewID   int64           `json:"review_id"`
	ReviewerID int64           `json:"reviewer_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Distribution describes what observing a scored review settled
type Distribution struct {
	SubmissionID    int64            `json:"submission_id"`
	CourseID        int64            `json:"course_id"`
	StudentID       int64            `json:"student_id"`
	ScoredCount     int              `json:"scored_count"`
	RequiredCount   int              `json:"required_count"`
	Complete        bool             `json:"complete"`
	Average         decimal.Decimal  `json:"average"`
	Passed          bool             `json:"passed"`
	StudentReward   decimal.Decimal  `json:"student_reward"`
	ReviewerRewards []ReviewerReward `json:"reviewer_rewards"`
	// Replayed is true when every credit already existed
	Replayed bool `json:"replayed"`
}

// Engine disburses peer-review rewards
//
//go:generate mockgen -source=engine.go -destination=../mocks/reward.go -package=mocks -mock_names=Engine=MockRewardEngine
type Engine interface {
	// ObserveScoredReview settles a submission's rewards on the first observation
	// that all required scores exist. Re-observations replay no credits.
	ObserveScoredReview(ctx context.Context, review domain.ScoredReview) (*Distribution, error)
}

type engine struct {
	store     store.Store
	ledger    ledger.Ledger
	catalog   catalog.Catalog
	publisher messaging.Publisher
	clock     adapter.Clock
}

// New creates a reward engine
func New(st store.Store, ldg ledger.Ledger, cat catalog.Catalog, pub messaging.Publisher, clock adapter.Clock) Engine {
	return &engine{
		store:     st,
		ledger:    ldg,
		catalog:   cat,
		publisher: pub,
		clock:     clock,
	}
}

func (e *engine) ObserveScoredReview(ctx context.Context, review domain.ScoredReview) (*Distribution, error) {
	if review.Score < MinScore || review.Score > MaxScore {
		return nil, domain.ErrBadRequest.
			Withf("score %d is outside [%d, %d]", review.Score, MinScore, MaxScore).
			With("submission_id", review.SubmissionID)
	}

	// catalog reads stay outside the ledger transaction
	sub, err := e.catalog.GetSubmission(ctx, review.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	if sub == nil {
		return nil, domain.ErrNotFound.Withf("submission not found").With("submission_id", review.SubmissionID)
	}
	if !overlayScore(sub, review) {
		return nil, domain.ErrNotFound.
			Withf("reviewer has no review on the submission").
			With("submission_id", review.SubmissionID).
			With("reviewer_id", review.ReviewerID)
	}

	scored := sub.ScoredReviews()
	required := max(sub.RequiredScoreCount, 1)
	dist := &Distribution{
		SubmissionID:  sub.ID,
		CourseID:      sub.CourseID,
		StudentID:     sub.StudentID,
		ScoredCount:   len(scored),
		RequiredCount: required,
	}
	if len(scored) < required {
		logger.DebugCtx(ctx, "Submission still awaiting scores",
			zap.Int64("submissionID", sub.ID),
			zap.Int("scored", len(scored)),
			zap.Int("required", required))
		return dist, nil
	}

	course, err := e.catalog.GetCourse(ctx, sub.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if course == nil {
		return nil, domain.ErrNotFound.Withf("course not found").
			With("course_id", sub.CourseID).
			With("submission_id", sub.ID)
	}

	scores := make([]int, 0, len(scored))
	for _, r := range scored {
		scores = append(scores, *r.Score)
	}
	dist.Complete = true
	dist.Average, dist.Passed = Passed(scores)
	budget := BudgetFor(course.PriceEUR)

	var results []ledger.Result
	err = e.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.LockSubmission(ctx, sub.ID); err != nil {
			return err
		}

		mutations, err := e.reviewerMutations(ctx, tx, sub, scored, budget)
		if err != nil {
			return err
		}
		dist.StudentReward = decimal.Zero
		if dist.Passed {
			amount, err := e.studentReward(ctx, tx, sub, budget)
			if err != nil {
				return err
			}
			if amount.IsPositive() {
				dist.StudentReward = amount
				mutations = append(mutations, ledger.Mutation{
					UserID:      sub.StudentID,
					Kind:        domain.KindCreditReward,
					Delta:       amount,
					ExternalRef: domain.SubmissionStudentRef(sub.ID),
					CourseID:    &sub.CourseID,
					Metadata: map[string]any{
						"batch":   domain.SubmissionRef(sub.ID),
						"role":    "student",
						"average": dist.Average.String(),
					},
				})
			}
		}

		results, err = e.ledger.Apply(ctx, tx, mutations...)
		return err
	})
	if err != nil {
		if domain.CodeOf(err) == domain.CodeInvariantViolation {
			logger.ErrorCtx(ctx, err, zap.Int64("submission_id", sub.ID))
		}
		return nil, err
	}

	dist.ReviewerRewards = make([]ReviewerReward, 0, len(scored))
	for i, r := range scored {
		dist.ReviewerRewards = append(dist.ReviewerRewards, ReviewerReward{
			ReviewID:   r.ReviewID,
			ReviewerID: r.ReviewerID,
			Amount:     results[i].Entry.Amount,
		})
	}

	applied := 0
	for i, res := range results {
		if res.Replayed {
			continue
		}
		applied++
		role := "reviewer"
		if i >= len(scored) {
			role = "student"
		}
		metrics.RewardsCredited.WithLabelValues(role).Inc()
	}
	dist.Replayed = applied == 0
	if dist.Replayed {
		logger.DebugCtx(ctx, "Reward batch replayed", zap.Int64("submissionID", sub.ID))
		return dist, nil
	}

	logger.InfoCtx(ctx, "Rewards distributed",
		zap.Int64("submissionID", sub.ID),
		zap.Int64("courseID", sub.CourseID),
		zap.Bool("passed", dist.Passed),
		zap.String("average", dist.Average.String()),
		zap.String("studentReward", dist.StudentReward.String()),
		zap.Int("reviewers", len(scored)))
	messaging.PublishBestEffort(ctx, e.publisher, messaging.NewEvent(messaging.EventRewardDistributed, e.clock.Now(), dist))
	return dist, nil
}

// reviewerMutations credits every scored review. A review that was already paid keeps
// its recorded amount so a later course price change cannot alter the replay.
func (e *engine) reviewerMutations(ctx context.Context, tx store.Store, sub *catalog.Submission, scored []catalog.Review, budget Budget) ([]ledger.Mutation, error) {
	mutations := make([]ledger.Mutation, 0, len(scored)+1)
	for _, r := range scored {
		amount := budget.ReviewerFlat
		existing, err := tx.GetLedgerEntry(ctx, r.ReviewerID, string(domain.KindCreditReward), domain.ReviewRef(r.ReviewID))
		if err != nil {
			return nil, err
		}
		if existing != nil {
			amount = existing.Amount
		}
		mutations = append(mutations, ledger.Mutation{
			UserID:      r.ReviewerID,
			Kind:        domain.KindCreditReward,
			Delta:       amount,
			ExternalRef: domain.ReviewRef(r.ReviewID),
			CourseID:    &sub.CourseID,
			Metadata: map[string]any{
				"batch": domain.SubmissionRef(sub.ID),
				"role":  "reviewer",
				"score": *r.Score,
			},
		})
	}
	return mutations, nil
}

// studentReward returns the recorded reward when the submission was already settled,
// otherwise the seeded draw capped by what is left of the course pool
func (e *engine) studentReward(ctx context.Context, tx store.Store, sub *catalog.Submission, budget Budget) (decimal.Decimal, error) {
	existing, err := tx.GetLedgerEntry(ctx, sub.StudentID, string(domain.KindCreditReward), domain.SubmissionStudentRef(sub.ID))
	if err != nil {
		return decimal.Zero, err
	}
	if existing != nil {
		return existing.Amount, nil
	}

	disbursed, err := tx.SumLedgerAmounts(ctx, store.LedgerSumFilter{
		CourseID:  &sub.CourseID,
		Kind:      string(domain.KindCreditReward),
		RefPrefix: domain.SubmissionStudentRefPrefix,
	})
	if err != nil {
		return decimal.Zero, err
	}

	remaining := budget.MaxPool.Sub(disbursed)
	if !remaining.IsPositive() {
		logger.InfoCtx(ctx, "Course reward pool exhausted, skipping student reward",
			zap.Int64("submissionID", sub.ID),
			zap.Int64("courseID", sub.CourseID),
			zap.String("disbursed", disbursed.String()))
		return decimal.Zero, nil
	}
	return decimal.Min(DrawStudentReward(sub.ID, budget.PerSubmissionCap), remaining), nil
}

// overlayScore applies the event's score to the reviewer's unscored review.
// It reports false when the reviewer has no review on the submission.
func overlayScore(sub *catalog.Submission, review domain.ScoredReview) bool {
	found := false
	for i := range sub.Reviews {
		r := &sub.Reviews[i]
		if r.ReviewerID != int64(review.ReviewerID) {
			continue
		}
		found = true
		if r.Score == nil {
			score := review.Score
			r.Score = &score
			return true
		}
	}
	return found
}
