package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/store"
	"github.com/teocoin/settlement-engine/internal/store/schema"
)

// RunStoreTests runs the store suite against any backing database
func RunStoreTests(t *testing.T, initDB func(t *testing.T) store.Store) {
	t.Run("LockBalances", func(t *testing.T) { testLockBalances(t, initDB(t)) })
	t.Run("SaveBalanceRejectsNegative", func(t *testing.T) { testSaveBalanceRejectsNegative(t, initDB(t)) })
	t.Run("LedgerUniqueRef", func(t *testing.T) { testLedgerUniqueRef(t, initDB(t)) })
	t.Run("ListLedgerEntries", func(t *testing.T) { testListLedgerEntries(t, initDB(t)) })
	t.Run("SumLedgerAmounts", func(t *testing.T) { testSumLedgerAmounts(t, initDB(t)) })
	t.Run("DecisionLifecycle", func(t *testing.T) { testDecisionLifecycle(t, initDB(t)) })
	t.Run("ListExpiredDecisionIDs", func(t *testing.T) { testListExpiredDecisionIDs(t, initDB(t)) })
	t.Run("AutoRuleUpsert", func(t *testing.T) { testAutoRuleUpsert(t, initDB(t)) })
	t.Run("ChainSubmissions", func(t *testing.T) { testChainSubmissions(t, initDB(t)) })
	t.Run("WithTxRollback", func(t *testing.T) { testWithTxRollback(t, initDB(t)) })
}

// =============================================================================
// Test Data Builders
// =============================================================================

func buildLedgerEntry(userID int64, kind domain.LedgerKind, ref string, amount string, at time.Time) *schema.LedgerTransaction {
	return &schema.LedgerTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        string(kind),
		Amount:      decimal.RequireFromString(amount),
		ExternalRef: &ref,
		CreatedAt:   at.UTC(),
	}
}

func buildDecision(teacherID int64, createdAt time.Time, ttl time.Duration) (*schema.DiscountSnapshot, *schema.Decision) {
	snapshot := &schema.DiscountSnapshot{
		ID:                    uuid.NewString(),
		CourseID:              11,
		TeacherID:             teacherID,
		StudentID:             500,
		PriceEUR:              decimal.NewFromInt(100),
		DiscountPercent:       10,
		TEOCostWei:            "10000000000000000000",
		TeacherBonusWei:       "2500000000000000000",
		TeacherCommissionRate: decimal.RequireFromString("0.5"),
		TeacherStakingTier:    "Bronze",
		CreatedAt:             createdAt.UTC(),
	}
	decision := &schema.Decision{
		ID:        uuid.NewString(),
		TeacherID: teacherID,
		State:     string(domain.DecisionPending),
		ExpiresAt: createdAt.Add(ttl).UTC(),
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	return snapshot, decision
}

// =============================================================================
// Tests
// =============================================================================

func testLockBalances(t *testing.T, s store.Store) {
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Store) error {
		balances, err := tx.LockBalances(ctx, 3, 1, 3, 2)
		require.NoError(t, err)
		assert.Len(t, balances, 3)
		for _, id := range []int64{1, 2, 3} {
			require.Contains(t, balances, id)
			assert.True(t, balances[id].Available.IsZero())
			assert.True(t, balances[id].Staked.IsZero())
		}

		balances[2].Available = decimal.RequireFromString("12.5")
		return tx.SaveBalance(ctx, balances[2])
	})
	require.NoError(t, err)

	// second lock does not reset existing rows
	err = s.WithTx(ctx, func(tx store.Store) error {
		balances, err := tx.LockBalances(ctx, 2)
		require.NoError(t, err)
		assert.True(t, balances[2].Available.Equal(decimal.RequireFromString("12.5")))
		return nil
	})
	require.NoError(t, err)

	missing, err := s.GetBalance(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testSaveBalanceRejectsNegative(t *testing.T, s store.Store) {
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Store) error {
		balances, err := tx.LockBalances(ctx, 7)
		if err != nil {
			return err
		}
		balances[7].Available = decimal.NewFromInt(-1)
		return tx.SaveBalance(ctx, balances[7])
	})
	assert.Error(t, err)

	balance, err := s.GetBalance(ctx, 7)
	require.NoError(t, err)
	// the whole transaction rolled back, including the row creation
	assert.Nil(t, balance)
}

func testLedgerUniqueRef(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.CreateLedgerEntry(ctx, buildLedgerEntry(1, domain.KindCreditReward, "review:1", "1", now)))

	err := s.CreateLedgerEntry(ctx, buildLedgerEntry(1, domain.KindCreditReward, "review:1", "1", now))
	require.Error(t, err)
	assert.True(t, store.IsRetryable(err))

	// same ref under another kind or user is a different key
	require.NoError(t, s.CreateLedgerEntry(ctx, buildLedgerEntry(1, domain.KindRefund, "review:1", "1", now)))
	require.NoError(t, s.CreateLedgerEntry(ctx, buildLedgerEntry(2, domain.KindCreditReward, "review:1", "1", now)))

	entry, err := s.GetLedgerEntry(ctx, 1, string(domain.KindCreditReward), "review:1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(1)))

	none, err := s.GetLedgerEntry(ctx, 1, string(domain.KindCreditReward), "review:2")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func testListLedgerEntries(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateLedgerEntry(ctx, buildLedgerEntry(1, domain.KindCreditReward, "submission_student:1", "3", base)))
	require.NoError(t, s.CreateLedgerEntry(ctx, buildLedgerEntry(1, domain.KindCreditReward, "submissionXstudent:2", "4", base.Add(time.Minute))))
	require.NoError(t, s.CreateLedgerEntry(ctx, buildLedgerEntry(1, domain.KindDebitDiscount, "decision:abc", "-2", base.Add(2*time.Minute))))
	require.NoError(t, s.CreateLedgerEntry(ctx, buildLedgerEntry(2, domain.KindCreditReward, "review:5", "1", base)))

	all, err := s.ListLedgerEntries(ctx, 1, store.LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "decision:abc", *all[0].ExternalRef, "newest first")

	byKind, err := s.ListLedgerEntries(ctx, 1, store.LedgerFilter{Kinds: []string{string(domain.KindDebitDiscount)}})
	require.NoError(t, err)
	assert.Len(t, byKind, 1)

	byPrefix, err := s.ListLedgerEntries(ctx, 1, store.LedgerFilter{RefPrefix: "submission_student:"})
	require.NoError(t, err)
	require.Len(t, byPrefix, 1)
	assert.Equal(t, "submission_student:1", *byPrefix[0].ExternalRef)

	since := base.Add(30 * time.Second)
	windowed, err := s.ListLedgerEntries(ctx, 1, store.LedgerFilter{Since: &since, Limit: 1})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, "decision:abc", *windowed[0].ExternalRef)

	paged, err := s.ListLedgerEntries(ctx, 1, store.LedgerFilter{Limit: 1, Offset: 2})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "submission_student:1", *paged[0].ExternalRef)

	byRef, err := s.ListLedgerEntriesByRefPrefix(ctx, "review:")
	require.NoError(t, err)
	assert.Len(t, byRef, 1)
}

func testSumLedgerAmounts(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC()
	course := int64(42)
	other := int64(43)

	e1 := buildLedgerEntry(1, domain.KindCreditReward, "submission_student:1", "3.12345678", now)
	e1.CourseID = &course
	e2 := buildLedgerEntry(2, domain.KindCreditReward, "submission_student:2", "1.5", now)
	e2.CourseID = &course
	e3 := buildLedgerEntry(3, domain.KindCreditReward, "review:9", "1", now)
	e3.CourseID = &course
	e4 := buildLedgerEntry(4, domain.KindCreditReward, "submission_student:3", "9", now)
	e4.CourseID = &other
	for _, e := range []*schema.LedgerTransaction{e1, e2, e3, e4} {
		require.NoError(t, s.CreateLedgerEntry(ctx, e))
	}

	total, err := s.SumLedgerAmounts(ctx, store.LedgerSumFilter{
		CourseID:  &course,
		Kind:      string(domain.KindCreditReward),
		RefPrefix: domain.SubmissionStudentRefPrefix,
	})
	require.NoError(t, err)
	assert.Equal(t, "4.62345678", total.String())

	empty, err := s.SumLedgerAmounts(ctx, store.LedgerSumFilter{RefPrefix: "nothing:"})
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func testDecisionLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	snapshot, decision := buildDecision(10, now, 24*time.Hour)
	require.NoError(t, s.CreateDecision(ctx, snapshot, decision))

	got, err := s.GetDecision(ctx, decision.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, string(domain.DecisionPending), got.State)
	assert.Equal(t, snapshot.ID, got.Snapshot.ID)
	assert.Equal(t, "10000000000000000000", got.Snapshot.TEOCostWei)
	assert.True(t, got.Snapshot.PriceEUR.Equal(decimal.NewFromInt(100)))

	err = s.WithTx(ctx, func(tx store.Store) error {
		locked, err := tx.LockDecision(ctx, decision.ID)
		require.NoError(t, err)
		require.NotNil(t, locked)
		assert.Equal(t, snapshot.ID, locked.Snapshot.ID)

		ok, err := tx.TransitionDecision(ctx, decision.ID, string(domain.DecisionAccepted), now, []byte(`{"state":"ACCEPTED"}`))
		require.NoError(t, err)
		assert.True(t, ok)

		// compare-and-set fails once the state left PENDING
		ok, err = tx.TransitionDecision(ctx, decision.ID, string(domain.DecisionExpired), now, nil)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)

	got, err = s.GetDecision(ctx, decision.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.DecisionAccepted), got.State)
	require.NotNil(t, got.DecidedAt)
	assert.JSONEq(t, `{"state":"ACCEPTED"}`, string(got.Settlement))

	teacher := int64(10)
	listed, err := s.ListDecisions(ctx, store.DecisionFilter{TeacherID: &teacher, State: string(domain.DecisionAccepted)})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, snapshot.ID, listed[0].Snapshot.ID)

	missing, err := s.GetDecision(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	// one decision per snapshot
	_, dup := buildDecision(10, now, time.Hour)
	dup.SnapshotID = snapshot.ID
	err = s.WithTx(ctx, func(tx store.Store) error {
		return tx.CreateDecision(ctx, &schema.DiscountSnapshot{ID: snapshot.ID}, dup)
	})
	assert.Error(t, err)
}

func testListExpiredDecisionIDs(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	snapLate, late := buildDecision(1, now.Add(-25*time.Hour), 24*time.Hour)   // expired 1h ago
	snapEarly, early := buildDecision(1, now.Add(-48*time.Hour), 24*time.Hour) // expired 24h ago
	snapFresh, fresh := buildDecision(1, now, 24*time.Hour)
	snapExact, exact := buildDecision(1, now.Add(-24*time.Hour), 24*time.Hour) // expires exactly now
	for _, pair := range []struct {
		s *schema.DiscountSnapshot
		d *schema.Decision
	}{{snapLate, late}, {snapEarly, early}, {snapFresh, fresh}, {snapExact, exact}} {
		require.NoError(t, s.CreateDecision(ctx, pair.s, pair.d))
	}

	ids, err := s.ListExpiredDecisionIDs(ctx, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{early.ID, late.ID, exact.ID}, ids)

	limited, err := s.ListExpiredDecisionIDs(ctx, now, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{early.ID}, limited)
}

func testAutoRuleUpsert(t *testing.T, s store.Store) {
	ctx := context.Background()

	none, err := s.GetAutoRule(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, s.UpsertAutoRule(ctx, &schema.TeacherAutoRule{TeacherID: 5, Mode: string(domain.AutoRuleAlwaysAccept)}))
	threshold := decimal.RequireFromString("7.5")
	require.NoError(t, s.UpsertAutoRule(ctx, &schema.TeacherAutoRule{TeacherID: 5, Mode: string(domain.AutoRuleThreshold), ThresholdTEO: &threshold}))

	rule, err := s.GetAutoRule(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, string(domain.AutoRuleThreshold), rule.Mode)
	require.NotNil(t, rule.ThresholdTEO)
	assert.True(t, rule.ThresholdTEO.Equal(threshold))
}

func testChainSubmissions(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	sub := &schema.ChainSubmission{
		ID:        uuid.NewString(),
		UserID:    1,
		ToAddress: "0x00000000000000000000000000000000000000aa",
		Amount:    decimal.NewFromInt(5),
		AmountWei: "5000000000000000000",
		Status:    string(domain.ChainSubmissionPending),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateChainSubmission(ctx, sub))

	hash := "0xabc"
	ok, err := s.UpdateChainSubmission(ctx, sub.ID,
		[]string{string(domain.ChainSubmissionPending)},
		store.UpdateChainSubmissionInput{Status: string(domain.ChainSubmissionSubmitted), TxHash: &hash})
	require.NoError(t, err)
	assert.True(t, ok)

	// a second move out of PENDING loses the race
	ok, err = s.UpdateChainSubmission(ctx, sub.ID,
		[]string{string(domain.ChainSubmissionPending)},
		store.UpdateChainSubmissionInput{Status: string(domain.ChainSubmissionFailed)})
	require.NoError(t, err)
	assert.False(t, ok)

	submitted, err := s.ListChainSubmissions(ctx, string(domain.ChainSubmissionSubmitted), 10)
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	assert.Equal(t, "0xabc", *submitted[0].TxHash)

	got, err := s.GetChainSubmission(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "5000000000000000000", got.AmountWei)
}

func testWithTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateLedgerEntry(ctx, buildLedgerEntry(1, domain.KindAdjustment, "rollback:1", "1", time.Now())); err != nil {
			return err
		}
		return domain.ErrInvariant.With("user_id", 1)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvariant))

	entry, err := s.GetLedgerEntry(ctx, 1, string(domain.KindAdjustment), "rollback:1")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
