package discount

import (
	"context"

	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/ledger"
	"github.com/teocoin/settlement-engine/internal/store"
	"github.com/teocoin/settlement-engine/internal/store/schema"
)

func (o *orchestrator) GetDecision(ctx context.Context, decisionID string) (*domain.Decision, error) {
	row, err := o.store.GetDecision(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound.Withf("decision not found").With("decision_id", decisionID)
	}
	return o.toDecision(row)
}

func (o *orchestrator) ListDecisions(ctx context.Context, teacherID int64, state domain.DecisionState, limit, offset int) ([]domain.Decision, error) {
	if state != "" && !state.Valid() {
		return nil, domain.ErrBadRequest.Withf("unknown decision state %q", state)
	}
	if limit <= 0 {
		limit = ledger.DefaultListLimit
	}

	rows, err := o.store.ListDecisions(ctx, store.DecisionFilter{
		TeacherID: &teacherID,
		State:     string(state),
		Limit:     min(limit, ledger.MaxListLimit),
		Offset:    max(offset, 0),
	})
	if err != nil {
		return nil, err
	}

	decisions := make([]domain.Decision, 0, len(rows))
	for i := range rows {
		d, err := o.toDecision(&rows[i])
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, *d)
	}
	return decisions, nil
}

func (o *orchestrator) SetAutoRule(ctx context.Context, rule domain.AutoRule) (*domain.AutoRule, error) {
	if rule.TeacherID <= 0 {
		return nil, domain.ErrBadAutoRule.Withf("teacher id must be positive")
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	row := &schema.TeacherAutoRule{
		TeacherID:    int64(rule.TeacherID),
		Mode:         string(rule.Mode),
		ThresholdTEO: rule.ThresholdTEO,
	}
	if err := o.store.UpsertAutoRule(ctx, row); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (o *orchestrator) GetAutoRule(ctx context.Context, teacherID int64) (*domain.AutoRule, error) {
	row, err := o.store.GetAutoRule(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return &domain.AutoRule{TeacherID: domain.UserID(teacherID), Mode: domain.AutoRuleManual}, nil
	}
	return &domain.AutoRule{
		TeacherID:    domain.UserID(row.TeacherID),
		Mode:         domain.AutoRuleMode(row.Mode),
		ThresholdTEO: row.ThresholdTEO,
	}, nil
}

func (o *orchestrator) toDecision(row *schema.Decision) (*domain.Decision, error) {
	d := &domain.Decision{
		ID:        row.ID,
		State:     domain.DecisionState(row.State),
		ExpiresAt: row.ExpiresAt,
		DecidedAt: row.DecidedAt,
		CreatedAt: row.CreatedAt,
		Snapshot: domain.Snapshot{
			ID:                    row.Snapshot.ID,
			CourseID:              row.Snapshot.CourseID,
			TeacherID:             domain.UserID(row.Snapshot.TeacherID),
			StudentID:             domain.UserID(row.Snapshot.StudentID),
			PriceEUR:              row.Snapshot.PriceEUR,
			DiscountPercent:       row.Snapshot.DiscountPercent,
			TEOCostWei:            row.Snapshot.TEOCostWei,
			TeacherBonusWei:       row.Snapshot.TeacherBonusWei,
			TeacherCommissionRate: row.Snapshot.TeacherCommissionRate,
			TeacherStakingTier:    row.Snapshot.TeacherStakingTier,
			CreatedAt:             row.Snapshot.CreatedAt,
		},
	}
	if d.State.Terminal() {
		summary, err := o.recordedSummary(row)
		if err != nil {
			return nil, err
		}
		d.Summary = summary
	}
	return d, nil
}
