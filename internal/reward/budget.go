package reward

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/teocoin/settlement-engine/internal/domain"
)

var (
	maxPoolRate      = decimal.RequireFromString(domain.RewardPoolPercent)
	submissionRate   = decimal.RequireFromString(domain.RewardPerSubmissionPercent)
	reviewerFlatRate = decimal.RequireFromString(domain.RewardReviewerPercent)
	minReward        = decimal.NewFromInt(1)
	passingAverage   = decimal.NewFromInt(domain.PassingAverageScore)
)

// Budget is the reward envelope of a course, derived from its price
type Budget struct {
	MaxPool          decimal.Decimal `json:"max_pool"`
	PerSubmissionCap decimal.Decimal `json:"per_submission_cap"`
	ReviewerFlat     decimal.Decimal `json:"reviewer_flat"`
}

// BudgetFor computes max_pool = 15% of price, per_submission_cap = max(1, 5% of price)
// and reviewer_flat = max(1, 0.5% of price), all at ledger precision
func BudgetFor(priceEUR decimal.Decimal) Budget {
	return Budget{
		MaxPool:          domain.RoundTEO(priceEUR.Mul(maxPoolRate)),
		PerSubmissionCap: decimal.Max(minReward, domain.RoundTEO(priceEUR.Mul(submissionRate))),
		ReviewerFlat:     decimal.Max(minReward, domain.RoundTEO(priceEUR.Mul(reviewerFlatRate))),
	}
}

// Passed reports whether the average of scores reaches the passing mark
func Passed(scores []int) (decimal.Decimal, bool) {
	if len(scores) == 0 {
		return decimal.Zero, false
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(scores))))
	return avg, avg.GreaterThanOrEqual(passingAverage)
}

// seed hashes the submission id so the draw is stable across processes and replays
func seed(submissionID int64) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.FormatInt(submissionID, 10)))
	return h.Sum64()
}

// DrawStudentReward draws uniformly from [1, ceiling] at ledger precision.
// The same submission always yields the same amount.
func DrawStudentReward(submissionID int64, ceiling decimal.Decimal) decimal.Decimal {
	ceiling = domain.RoundTEO(ceiling)
	if ceiling.LessThanOrEqual(minReward) {
		return minReward
	}

	s := seed(submissionID)
	rng := rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))

	// span is the number of 1e-8 steps between 1 and ceiling
	span := ceiling.Sub(minReward).Shift(domain.TEODecimals).IntPart()
	step := rng.Int64N(span + 1)
	return minReward.Add(decimal.New(step, -domain.TEODecimals))
}
