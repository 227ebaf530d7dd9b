package ledger

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/metrics"
	"github.com/teocoin/settlement-engine/internal/store"
	"github.com/teocoin/settlement-engine/internal/store/schema"
)

// Mutation is one balance change plus its log row
type Mutation struct {
	UserID int64
	Kind   domain.LedgerKind
	// Delta is the signed effect on the available sub-balance; it is the row amount
	Delta decimal.Decimal
	// StakedDelta is the signed effect on the staked sub-balance
	StakedDelta decimal.Decimal
	// ExternalRef is the idempotency key; empty means not idempotent
	ExternalRef string
	CourseID    *int64
	Metadata    map[string]any
}

// Result reports what happened to a mutation
type Result struct {
	Entry *domain.LedgerEntry
	// Replayed is true when an identical row already existed and nothing changed
	Replayed bool
}

func (m Mutation) validate() error {
	if !m.Kind.Valid() {
		return domain.ErrBadRequest.Withf("unknown ledger kind %q", m.Kind)
	}
	if m.Delta.IsZero() && m.StakedDelta.IsZero() {
		return domain.ErrInvalidAmount.Withf("mutation has no effect")
	}
	for _, d := range []decimal.Decimal{m.Delta, m.StakedDelta} {
		if !d.IsZero() {
			if err := domain.ValidateAmount(d.Abs()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Apply posts mutations inside tx, which must be a transactional store.
// Balance rows are locked in ascending user order before any row is written.
// Replays of an existing (user, kind, external_ref) with the same amount are no-ops;
// a replay with a different amount aborts with ERR_INVARIANT.
func (l *ledger) Apply(ctx context.Context, tx store.Store, mutations ...Mutation) ([]Result, error) {
	if len(mutations) == 0 {
		return nil, nil
	}

	userIDs := make([]int64, 0, len(mutations))
	for _, m := range mutations {
		if err := m.validate(); err != nil {
			metrics.LedgerMutations.WithLabelValues(string(m.Kind), "rejected").Inc()
			return nil, err
		}
		userIDs = append(userIDs, m.UserID)
	}

	balances, err := tx.LockBalances(ctx, userIDs...)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(mutations))
	dirty := make(map[int64]bool, len(balances))
	for _, m := range mutations {
		if m.ExternalRef != "" {
			existing, err := tx.GetLedgerEntry(ctx, m.UserID, string(m.Kind), m.ExternalRef)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				if !existing.Amount.Equal(m.Delta) {
					invErr := domain.ErrInvariant.
						Withf("external_ref replayed with a different amount: recorded %s, got %s", existing.Amount.String(), m.Delta.String()).
						With("user_id", m.UserID).
						With("kind", m.Kind).
						With("external_ref", m.ExternalRef)
					logger.ErrorCtx(ctx, invErr)
					metrics.LedgerMutations.WithLabelValues(string(m.Kind), "rejected").Inc()
					return nil, invErr
				}
				logger.DebugCtx(ctx, "Ledger mutation replayed",
					zap.Int64("userID", m.UserID),
					zap.String("kind", string(m.Kind)),
					zap.String("externalRef", m.ExternalRef))
				metrics.LedgerMutations.WithLabelValues(string(m.Kind), "replayed").Inc()
				results = append(results, Result{Entry: toEntry(existing), Replayed: true})
				continue
			}
		}

		balance := balances[m.UserID]
		if balance == nil {
			return nil, domain.ErrInvariant.Withf("balance row not locked").With("user_id", m.UserID)
		}

		available := balance.Available.Add(m.Delta)
		staked := balance.Staked.Add(m.StakedDelta)
		if available.IsNegative() {
			metrics.LedgerMutations.WithLabelValues(string(m.Kind), "rejected").Inc()
			return nil, domain.ErrInsufficient.
				Withf("available %s is less than %s", balance.Available.String(), m.Delta.Neg().String()).
				With("user_id", m.UserID)
		}
		if staked.IsNegative() {
			metrics.LedgerMutations.WithLabelValues(string(m.Kind), "rejected").Inc()
			return nil, domain.ErrInsufficient.
				Withf("staked %s is less than %s", balance.Staked.String(), m.StakedDelta.Neg().String()).
				With("user_id", m.UserID)
		}

		createdAt := l.nextTimestamp(balance.LastEntryAt)
		entry := &schema.LedgerTransaction{
			ID:        uuid.NewString(),
			UserID:    m.UserID,
			Kind:      string(m.Kind),
			Amount:    m.Delta,
			CourseID:  m.CourseID,
			CreatedAt: createdAt,
		}
		if m.ExternalRef != "" {
			ref := m.ExternalRef
			entry.ExternalRef = &ref
		}
		if len(m.Metadata) > 0 {
			raw, err := l.json.Marshal(m.Metadata)
			if err != nil {
				return nil, err
			}
			entry.Metadata = datatypes.JSON(raw)
		}
		if err := tx.CreateLedgerEntry(ctx, entry); err != nil {
			return nil, err
		}

		balance.Available = available
		balance.Staked = staked
		balance.LastEntryAt = &createdAt
		dirty[m.UserID] = true

		logger.DebugCtx(ctx, "Ledger mutation applied",
			zap.Int64("userID", m.UserID),
			zap.String("kind", string(m.Kind)),
			zap.String("amount", m.Delta.String()),
			zap.String("stakedDelta", m.StakedDelta.String()),
			zap.String("externalRef", m.ExternalRef))
		metrics.LedgerMutations.WithLabelValues(string(m.Kind), "applied").Inc()
		results = append(results, Result{Entry: toEntry(entry)})
	}

	ids := make([]int64, 0, len(dirty))
	for id := range dirty {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := tx.SaveBalance(ctx, balances[id]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// nextTimestamp keeps created_at strictly increasing per user at database precision
func (l *ledger) nextTimestamp(last *time.Time) time.Time {
	now := l.clock.Now().UTC().Truncate(time.Microsecond)
	if last != nil && !now.After(*last) {
		return last.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return now
}
