package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teocoin/settlement-engine/internal/decision"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/ledger"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/messaging"
	"github.com/teocoin/settlement-engine/internal/metrics"
	"github.com/teocoin/settlement-engine/internal/store"
	"github.com/teocoin/settlement-engine/internal/store/schema"
)

var stateEvents = map[domain.DecisionState]messaging.EventType{
	domain.DecisionAccepted: messaging.EventDecisionAccepted,
	domain.DecisionDeclined: messaging.EventDecisionDeclined,
	domain.DecisionExpired:  messaging.EventDecisionExpired,
}

func (o *orchestrator) ResolveDecision(ctx context.Context, decisionID string, outcome domain.Outcome) (*domain.SettlementSummary, error) {
	if outcome == domain.OutcomeExpire {
		return nil, domain.ErrBadRequest.Withf("outcome %s is reserved for the expiry sweeper", outcome)
	}
	return o.resolve(ctx, decisionID, outcome)
}

func (o *orchestrator) ExpireDecision(ctx context.Context, decisionID string) (*domain.SettlementSummary, error) {
	return o.resolve(ctx, decisionID, domain.OutcomeExpire)
}

// resolve locks the decision row, posts the settlement rows and moves the decision
// out of PENDING in one transaction
func (o *orchestrator) resolve(ctx context.Context, decisionID string, outcome domain.Outcome) (*domain.SettlementSummary, error) {
	target, err := decision.Target(outcome)
	if err != nil {
		return nil, err
	}

	var summary *domain.SettlementSummary
	var replayed bool
	err = o.store.WithTx(ctx, func(tx store.Store) error {
		summary, replayed = nil, false

		row, err := tx.LockDecision(ctx, decisionID)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrNotFound.Withf("decision not found").With("decision_id", decisionID)
		}

		state := domain.DecisionState(row.State)
		if state.Terminal() {
			if !decision.SameOutcome(state, outcome) {
				return domain.ErrAlreadyDecided.Withf("decision is %s", state).With("decision_id", decisionID)
			}
			summary, err = o.recordedSummary(row)
			replayed = true
			return err
		}

		now := o.clock.Now().UTC().Truncate(time.Microsecond)
		if outcome == domain.OutcomeExpire && !decision.Expired(state, row.ExpiresAt, now) {
			return domain.ErrBadRequest.Withf("decision expires at %s", row.ExpiresAt.UTC().Format(time.RFC3339)).
				With("decision_id", decisionID)
		}
		if _, err := decision.Transition(state, outcome); err != nil {
			return err
		}

		cost, bonus, err := snapshotAmounts(&row.Snapshot)
		if err != nil {
			return err
		}

		mutations, err := o.settlementMutations(ctx, tx, row, outcome, cost, bonus)
		if err != nil {
			return err
		}
		if _, err := o.ledger.Apply(ctx, tx, mutations...); err != nil {
			return err
		}

		summary = buildSummary(row, target, cost, bonus, now)
		raw, err := o.json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to marshal settlement summary: %w", err)
		}
		ok, err := tx.TransitionDecision(ctx, decisionID, string(target), now, raw)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyDecided.With("decision_id", decisionID)
		}
		return nil
	})
	if err != nil {
		switch domain.CodeOf(err) {
		case domain.CodeReserveExhausted:
			logger.ErrorCtx(ctx, err, zap.String("outcome", string(outcome)))
		case domain.CodeInvariantViolation:
			logger.ErrorCtx(ctx, err, zap.String("decision_id", decisionID))
		}
		return nil, err
	}
	if replayed {
		return summary, nil
	}

	metrics.DecisionsResolved.WithLabelValues(string(summary.State)).Inc()
	logger.InfoCtx(ctx, "Decision settled",
		zap.String("decisionID", decisionID),
		zap.String("state", string(summary.State)),
		zap.Int64("teacherID", int64(summary.TeacherID)),
		zap.String("teacherTEO", summary.TeacherTEO.String()),
		zap.String("reserveDeltaTEO", summary.ReserveDeltaTEO.String()))
	messaging.PublishBestEffort(ctx, o.publisher, messaging.NewEvent(stateEvents[summary.State], summary.DecidedAt, summary))
	return summary, nil
}

// settlementMutations routes the snapshot economics.
// ACCEPT_TEO: teacher gets cost (decision_accept) and bonus (decision_bonus), the reserve pays the bonus.
// DECLINE_TEO and EXPIRE: the reserve keeps the student's TEO.
func (o *orchestrator) settlementMutations(
	ctx context.Context,
	tx store.Store,
	row *schema.Decision,
	outcome domain.Outcome,
	cost, bonus decimal.Decimal,
) ([]ledger.Mutation, error) {
	reserve := o.cfg.ReservePoolUserID
	courseID := row.Snapshot.CourseID
	teacherID := row.Snapshot.TeacherID

	switch outcome {
	case domain.OutcomeAcceptTEO:
		// lock both balances in user order before checking the reserve
		balances, err := tx.LockBalances(ctx, teacherID, reserve)
		if err != nil {
			return nil, err
		}
		if bonus.IsPositive() && balances[reserve].Available.LessThan(bonus) {
			return nil, domain.ErrReserveExhausted.
				Withf("reserve has %s, bonus needs %s", balances[reserve].Available.String(), bonus.String()).
				With("decision_id", row.ID).
				With("user_id", reserve)
		}

		mutations := []ledger.Mutation{{
			UserID:      teacherID,
			Kind:        domain.KindCreditReward,
			Delta:       cost,
			ExternalRef: domain.DecisionAcceptRef(row.ID),
			CourseID:    &courseID,
		}}
		if bonus.IsPositive() {
			mutations = append(mutations,
				ledger.Mutation{
					UserID:      teacherID,
					Kind:        domain.KindCreditReward,
					Delta:       bonus,
					ExternalRef: domain.DecisionBonusRef(row.ID),
					CourseID:    &courseID,
				},
				ledger.Mutation{
					UserID:      reserve,
					Kind:        domain.KindAdjustment,
					Delta:       bonus.Neg(),
					ExternalRef: domain.DecisionBonusRef(row.ID),
					CourseID:    &courseID,
				})
		}
		return mutations, nil

	case domain.OutcomeDeclineTEO, domain.OutcomeExpire:
		ref := domain.DecisionDeclineRef(row.ID)
		if outcome == domain.OutcomeExpire {
			ref = domain.DecisionExpireRef(row.ID)
		}
		return []ledger.Mutation{{
			UserID:      reserve,
			Kind:        domain.KindAdjustment,
			Delta:       cost,
			ExternalRef: ref,
			CourseID:    &courseID,
		}}, nil
	}
	return nil, domain.ErrBadRequest.Withf("unknown outcome %q", outcome)
}

func snapshotAmounts(snapshot *schema.DiscountSnapshot) (cost, bonus decimal.Decimal, err error) {
	costWei, err := domain.ParseWei(snapshot.TEOCostWei)
	if err != nil {
		return cost, bonus, err
	}
	bonusWei, err := domain.ParseWei(snapshot.TeacherBonusWei)
	if err != nil {
		return cost, bonus, err
	}
	if cost, err = domain.WeiToTEO(costWei); err != nil {
		return cost, bonus, err
	}
	if bonus, err = domain.WeiToTEO(bonusWei); err != nil {
		return cost, bonus, err
	}
	return cost, bonus, nil
}

var hundred = decimal.NewFromInt(100)

func buildSummary(row *schema.Decision, state domain.DecisionState, cost, bonus decimal.Decimal, decidedAt time.Time) *domain.SettlementSummary {
	snapshot := &row.Snapshot
	rate := snapshot.TeacherCommissionRate
	teacherShare := decimal.NewFromInt(1).Sub(rate)
	discounted := snapshot.PriceEUR.Mul(hundred.Sub(decimal.NewFromInt(int64(snapshot.DiscountPercent)))).Div(hundred)

	summary := &domain.SettlementSummary{
		DecisionID:         row.ID,
		State:              state,
		TeacherID:          domain.UserID(snapshot.TeacherID),
		StudentDebitTEO:    cost,
		DiscountedPriceEUR: discounted.RoundBank(2),
		CommissionRate:     rate,
		DecidedAt:          decidedAt,
	}
	if state == domain.DecisionAccepted {
		summary.TeacherFiatEUR = discounted.Mul(teacherShare).RoundBank(2)
		summary.TeacherTEO = cost.Add(bonus)
		summary.ReserveDeltaTEO = bonus.Neg()
		return summary
	}
	// the platform absorbs the discount and pays the teacher's share of the full price
	summary.TeacherFiatEUR = snapshot.PriceEUR.Mul(teacherShare).RoundBank(2)
	summary.TeacherTEO = decimal.Zero
	summary.ReserveDeltaTEO = cost
	return summary
}

func (o *orchestrator) recordedSummary(row *schema.Decision) (*domain.SettlementSummary, error) {
	if len(row.Settlement) == 0 {
		return nil, domain.ErrInvariant.Withf("terminal decision has no settlement summary").With("decision_id", row.ID)
	}
	var summary domain.SettlementSummary
	if err := o.json.Unmarshal(row.Settlement, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settlement summary: %w", err)
	}
	return &summary, nil
}
