package ledger_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/ledger"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/mocks"
	"github.com/teocoin/settlement-engine/internal/store"
	"github.com/teocoin/settlement-engine/internal/store/storetest"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLedger(t *testing.T) (ledger.Ledger, store.Store) {
	t.Helper()
	st, _ := storetest.NewSQLiteStore(t)
	return ledger.New(st, adapter.NewClock(), adapter.NewJSON()), st
}

func assertBalance(t *testing.T, l ledger.Ledger, userID int64, available, staked string) {
	t.Helper()
	balance, err := l.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, balance.Available.Equal(d(available)), "available: want %s got %s", available, balance.Available)
	assert.True(t, balance.Staked.Equal(d(staked)), "staked: want %s got %s", staked, balance.Staked)
}

func TestCreditDebit(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	assertBalance(t, l, 1, "0", "0")

	entry, err := l.Credit(ctx, 1, d("100"), domain.KindCreditReward, "grant:1")
	require.NoError(t, err)
	assert.Equal(t, domain.KindCreditReward, entry.Kind)
	assert.True(t, entry.Amount.Equal(d("100")))
	require.NotNil(t, entry.ExternalRef)
	assert.Equal(t, "grant:1", *entry.ExternalRef)

	entry, err = l.Debit(ctx, 1, d("10.12345678"), domain.KindDebitDiscount, "decision:x")
	require.NoError(t, err)
	assert.True(t, entry.Amount.Equal(d("-10.12345678")), "debit rows carry a negative amount")

	assertBalance(t, l, 1, "89.87654322", "0")
}

func TestDebit_Insufficient(t *testing.T) {
	l, st := newLedger(t)
	ctx := context.Background()

	_, err := l.Credit(ctx, 1, d("5"), domain.KindCreditReward, "grant:1")
	require.NoError(t, err)

	_, err = l.Debit(ctx, 1, d("5.00000001"), domain.KindDebitDiscount, "decision:y")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficient)

	// never clamps and never writes a row
	assertBalance(t, l, 1, "5", "0")
	entries, err := st.ListLedgerEntries(ctx, 1, store.LedgerFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAmountValidation(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	for _, amount := range []string{"0", "-1", "0.000000001"} {
		_, err := l.Credit(ctx, 1, d(amount), domain.KindCreditReward, "")
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, amount)
	}

	_, err := l.Credit(ctx, 1, d("1"), domain.LedgerKind("gift"), "")
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = l.Credit(ctx, 1, d("1"), domain.KindStake, "")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestIdempotentCredit(t *testing.T) {
	l, st := newLedger(t)
	ctx := context.Background()

	first, err := l.Credit(ctx, 7, d("3"), domain.KindCreditReward, "review:1")
	require.NoError(t, err)
	second, err := l.Credit(ctx, 7, d("3"), domain.KindCreditReward, "review:1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assertBalance(t, l, 7, "3", "0")

	entries, err := st.ListLedgerEntries(ctx, 7, store.LedgerFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// same ref under another kind is a distinct mutation
	_, err = l.Credit(ctx, 7, d("3"), domain.KindRefund, "review:1")
	require.NoError(t, err)
	assertBalance(t, l, 7, "6", "0")
}

func TestReplayWithDifferentAmount_IsInvariantViolation(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	_, err := l.Credit(ctx, 7, d("3"), domain.KindCreditReward, "review:1")
	require.NoError(t, err)

	_, err = l.Credit(ctx, 7, d("4"), domain.KindCreditReward, "review:1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvariant)

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "7", derr.Entities["user_id"])
	assert.Equal(t, "review:1", derr.Entities["external_ref"])

	assertBalance(t, l, 7, "3", "0")
}

func TestStakeUnstake(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	_, err := l.Credit(ctx, 3, d("500"), domain.KindCreditReward, "grant:3")
	require.NoError(t, err)

	entry, err := l.Stake(ctx, 3, d("300"), "")
	require.NoError(t, err)
	assert.Equal(t, domain.KindStake, entry.Kind)
	assert.True(t, entry.Amount.Equal(d("-300")))
	assertBalance(t, l, 3, "200", "300")

	info, err := l.GetStakingInfo(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Gold", info.Tier)
	assert.True(t, info.CommissionRate.Equal(d("0.38")))
	require.NotNil(t, info.NextTier)
	assert.Equal(t, "Platinum", *info.NextTier)
	assert.True(t, info.RemainingToNext.Equal(d("300")))

	_, err = l.Stake(ctx, 3, d("200.00000001"), "")
	assert.ErrorIs(t, err, domain.ErrInsufficient)

	_, err = l.Unstake(ctx, 3, d("300.5"), "")
	assert.ErrorIs(t, err, domain.ErrInsufficient)

	entry, err = l.Unstake(ctx, 3, d("100"), "")
	require.NoError(t, err)
	assert.True(t, entry.Amount.Equal(d("100")))
	assertBalance(t, l, 3, "300", "200")

	info, err = l.GetStakingInfo(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Silver", info.Tier)
}

func TestCreatedAtMonotonicPerUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	frozen := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	clock.EXPECT().Now().Return(frozen).AnyTimes()

	st, _ := storetest.NewSQLiteStore(t)
	l := ledger.New(st, clock, adapter.NewJSON())
	ctx := context.Background()

	for i := range 3 {
		_, err := l.Credit(ctx, 1, d("1"), domain.KindCreditReward, fmt.Sprintf("grant:%d", i))
		require.NoError(t, err)
	}
	// other users are not affected by user 1's sequence
	other, err := l.Credit(ctx, 2, d("1"), domain.KindCreditReward, "grant:0")
	require.NoError(t, err)
	assert.True(t, other.CreatedAt.Equal(frozen))

	entries, err := l.ListTransactions(ctx, 1, domain.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].CreatedAt.Equal(frozen.Add(2*time.Microsecond)))
	assert.True(t, entries[1].CreatedAt.Equal(frozen.Add(time.Microsecond)))
	assert.True(t, entries[2].CreatedAt.Equal(frozen))
}

func TestListTransactions(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	_, err := l.Credit(ctx, 1, d("10"), domain.KindCreditReward, "submission_student:1")
	require.NoError(t, err)
	_, err = l.Credit(ctx, 1, d("1"), domain.KindCreditReward, "review:4")
	require.NoError(t, err)
	_, err = l.Debit(ctx, 1, d("2"), domain.KindDebitDiscount, "decision:a")
	require.NoError(t, err)

	all, err := l.ListTransactions(ctx, 1, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	debits, err := l.ListTransactions(ctx, 1, domain.TransactionFilter{Kinds: []domain.LedgerKind{domain.KindDebitDiscount}})
	require.NoError(t, err)
	require.Len(t, debits, 1)
	assert.Equal(t, "decision:a", *debits[0].ExternalRef)

	reviews, err := l.ListTransactions(ctx, 1, domain.TransactionFilter{ExternalRefPrefix: "review:"})
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	paged, err := l.ListTransactions(ctx, 1, domain.TransactionFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, paged, 1)

	_, err = l.ListTransactions(ctx, 1, domain.TransactionFilter{Kinds: []domain.LedgerKind{"bogus"}})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestApply_BatchIsAtomic(t *testing.T) {
	l, st := newLedger(t)
	ctx := context.Background()

	_, err := l.Credit(ctx, 1, d("5"), domain.KindCreditReward, "grant:1")
	require.NoError(t, err)

	err = st.WithTx(ctx, func(tx store.Store) error {
		_, err := l.Apply(ctx, tx,
			ledger.Mutation{UserID: 2, Kind: domain.KindCreditReward, Delta: d("5"), ExternalRef: "batch:1"},
			ledger.Mutation{UserID: 1, Kind: domain.KindDebitDiscount, Delta: d("-6"), ExternalRef: "batch:1"},
		)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficient)

	// the credit to user 2 rolled back with the failing debit
	assertBalance(t, l, 1, "5", "0")
	assertBalance(t, l, 2, "0", "0")
}

func TestApply_ReplayedBatch(t *testing.T) {
	l, st := newLedger(t)
	ctx := context.Background()

	batch := []ledger.Mutation{
		{UserID: 1, Kind: domain.KindCreditReward, Delta: d("1"), ExternalRef: "review:1", Metadata: map[string]any{"score": 7}},
		{UserID: 2, Kind: domain.KindCreditReward, Delta: d("1"), ExternalRef: "review:2"},
	}

	var first, second []ledger.Result
	require.NoError(t, st.WithTx(ctx, func(tx store.Store) error {
		var err error
		first, err = l.Apply(ctx, tx, batch...)
		return err
	}))
	require.NoError(t, st.WithTx(ctx, func(tx store.Store) error {
		var err error
		second, err = l.Apply(ctx, tx, batch...)
		return err
	}))

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.False(t, first[0].Replayed)
	assert.True(t, second[0].Replayed)
	assert.True(t, second[1].Replayed)
	assert.Equal(t, first[0].Entry.ID, second[0].Entry.ID)
	assertBalance(t, l, 1, "1", "0")
	assertBalance(t, l, 2, "1", "0")
}

// Available and staked never go negative under any interleaving of operations
func TestProperty_NonNegativity(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(1, 2))

	users := []int64{1, 2, 3}
	for i := range 300 {
		user := users[rng.IntN(len(users))]
		amount := decimal.NewFromInt(int64(rng.IntN(2000) + 1)).Shift(-2)
		ref := fmt.Sprintf("op:%d", i)

		var err error
		switch rng.IntN(4) {
		case 0:
			_, err = l.Credit(ctx, user, amount, domain.KindCreditReward, ref)
		case 1:
			_, err = l.Debit(ctx, user, amount, domain.KindDebitDiscount, ref)
		case 2:
			_, err = l.Stake(ctx, user, amount, ref)
		case 3:
			_, err = l.Unstake(ctx, user, amount, ref)
		}
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficient)
		}

		for _, u := range users {
			balance, err := l.GetBalance(ctx, u)
			require.NoError(t, err)
			require.False(t, balance.Available.IsNegative(), "user %d available %s", u, balance.Available)
			require.False(t, balance.Staked.IsNegative(), "user %d staked %s", u, balance.Staked)
		}
	}
}

// Crediting the same (user, kind, external_ref) any number of times equals crediting once
func TestProperty_IdempotentCredit(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := range 20 {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			l, _ := newLedger(t)
			ctx := context.Background()
			amount := decimal.NewFromInt(int64(rng.IntN(1_000_000) + 1)).Shift(-8)
			repeats := rng.IntN(4) + 2

			for range repeats {
				_, err := l.Credit(ctx, 9, amount, domain.KindCreditReward, "ref:same")
				require.NoError(t, err)
			}
			assertBalance(t, l, 9, amount.String(), "0")
		})
	}
}

func TestConcurrentDebits_NeverOverdraw(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	_, err := l.Credit(ctx, 1, d("50"), domain.KindCreditReward, "grant:1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := range 10 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.Debit(ctx, 1, d("10"), domain.KindDebitDiscount, fmt.Sprintf("decision:%d", i))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficient)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assertBalance(t, l, 1, "0", "0")
}

func TestConcurrentDuplicateCredits_CommitOnce(t *testing.T) {
	l, st := newLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Credit(ctx, 4, d("2"), domain.KindCreditReward, "submission_student:77")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assertBalance(t, l, 4, "2", "0")
	entries, err := st.ListLedgerEntries(ctx, 4, store.LedgerFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
