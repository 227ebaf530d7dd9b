// Package decision holds the pure transition rules of teacher decisions.
// Nothing here touches storage; callers persist the result with a compare-and-set on state.
package decision

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/teocoin/settlement-engine/internal/domain"
)

var transitions = map[domain.Outcome]domain.DecisionState{
	domain.OutcomeAcceptTEO:  domain.DecisionAccepted,
	domain.OutcomeDeclineTEO: domain.DecisionDeclined,
	domain.OutcomeExpire:     domain.DecisionExpired,
}

// Target returns the terminal state an outcome leads to
func Target(outcome domain.Outcome) (domain.DecisionState, error) {
	to, ok := transitions[outcome]
	if !ok {
		return "", domain.ErrBadRequest.Withf("unknown outcome %q", outcome)
	}
	return to, nil
}

// Transition validates a move from the current state. PENDING is the only state that moves.
func Transition(from domain.DecisionState, outcome domain.Outcome) (domain.DecisionState, error) {
	to, err := Target(outcome)
	if err != nil {
		return "", err
	}
	if from != domain.DecisionPending {
		return "", domain.ErrAlreadyDecided.Withf("decision is %s", from)
	}
	return to, nil
}

// SameOutcome reports whether a terminal state was reached through outcome,
// in which case repeating the outcome returns the recorded summary
func SameOutcome(state domain.DecisionState, outcome domain.Outcome) bool {
	to, err := Target(outcome)
	return err == nil && state.Terminal() && state == to
}

// ExpiresAt is the expiry deadline of a decision created at createdAt
func ExpiresAt(createdAt time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = domain.DefaultDecisionTTL
	}
	return createdAt.Add(ttl)
}

// Expired reports whether a PENDING decision may be expired at now
func Expired(state domain.DecisionState, expiresAt, now time.Time) bool {
	return state == domain.DecisionPending && !expiresAt.After(now)
}

// EvaluateAutoRule returns the outcome a teacher's auto rule chooses for a new decision.
// ok is false when the decision stays PENDING for a manual choice; a missing rule is MANUAL.
func EvaluateAutoRule(rule *domain.AutoRule, costWei, bonusWei *big.Int) (outcome domain.Outcome, ok bool) {
	if rule == nil {
		return "", false
	}
	switch rule.Mode {
	case domain.AutoRuleAlwaysAccept:
		return domain.OutcomeAcceptTEO, true
	case domain.AutoRuleAlwaysDecline:
		return domain.OutcomeDeclineTEO, true
	case domain.AutoRuleThreshold:
		if rule.ThresholdTEO == nil || costWei == nil || bonusWei == nil {
			return "", false
		}
		total := new(big.Int).Add(costWei, bonusWei)
		totalTEO := decimal.NewFromBigInt(total, -domain.WeiDecimals)
		if totalTEO.GreaterThanOrEqual(*rule.ThresholdTEO) {
			return domain.OutcomeAcceptTEO, true
		}
	}
	return "", false
}
