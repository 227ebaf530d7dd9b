package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/store"
	"github.com/teocoin/settlement-engine/internal/store/schema"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Ledger is the authoritative internal TEO balance store
//
//go:generate mockgen -source=ledger.go -destination=../mocks/ledger.go -package=mocks -mock_names=Ledger=MockLedger
type Ledger interface {
	// Credit adds amount to available. Idempotent on (user, kind, externalRef).
	Credit(ctx context.Context, userID int64, amount decimal.Decimal, kind domain.LedgerKind, externalRef string) (*domain.LedgerEntry, error)

	// Debit removes amount from available or fails with ERR_INSUFFICIENT. Idempotent on (user, kind, externalRef).
	Debit(ctx context.Context, userID int64, amount decimal.Decimal, kind domain.LedgerKind, externalRef string) (*domain.LedgerEntry, error)

	// Stake moves amount from available to staked
	Stake(ctx context.Context, userID int64, amount decimal.Decimal, externalRef string) (*domain.LedgerEntry, error)

	// Unstake moves amount from staked to available
	Unstake(ctx context.Context, userID int64, amount decimal.Decimal, externalRef string) (*domain.LedgerEntry, error)

	// GetBalance returns the user's sub-balances; zero for users without history
	GetBalance(ctx context.Context, userID int64) (domain.Balance, error)

	// ListTransactions lists the user's ledger rows, newest first
	ListTransactions(ctx context.Context, userID int64, filter domain.TransactionFilter) ([]domain.LedgerEntry, error)

	// GetStakingInfo derives the user's tier from the staked balance
	GetStakingInfo(ctx context.Context, userID int64) (domain.StakingInfo, error)

	// Apply posts mutations inside an already open store transaction
	Apply(ctx context.Context, tx store.Store, mutations ...Mutation) ([]Result, error)
}

type ledger struct {
	store store.Store
	clock adapter.Clock
	json  adapter.JSON
}

// New creates a ledger over the store
func New(st store.Store, clock adapter.Clock, json adapter.JSON) Ledger {
	return &ledger{store: st, clock: clock, json: json}
}

func (l *ledger) mutate(ctx context.Context, m Mutation) (*domain.LedgerEntry, error) {
	var entry *domain.LedgerEntry
	err := l.store.WithTx(ctx, func(tx store.Store) error {
		results, err := l.Apply(ctx, tx, m)
		if err != nil {
			return err
		}
		entry = results[0].Entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func checkTransferKind(kind domain.LedgerKind) error {
	if !kind.Valid() {
		return domain.ErrBadRequest.Withf("unknown ledger kind %q", kind)
	}
	if kind == domain.KindStake || kind == domain.KindUnstake {
		return domain.ErrBadRequest.Withf("use stake/unstake for kind %q", kind)
	}
	return nil
}

func (l *ledger) Credit(ctx context.Context, userID int64, amount decimal.Decimal, kind domain.LedgerKind, externalRef string) (*domain.LedgerEntry, error) {
	if err := checkTransferKind(kind); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	return l.mutate(ctx, Mutation{UserID: userID, Kind: kind, Delta: amount, ExternalRef: externalRef})
}

func (l *ledger) Debit(ctx context.Context, userID int64, amount decimal.Decimal, kind domain.LedgerKind, externalRef string) (*domain.LedgerEntry, error) {
	if err := checkTransferKind(kind); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	return l.mutate(ctx, Mutation{UserID: userID, Kind: kind, Delta: amount.Neg(), ExternalRef: externalRef})
}

func (l *ledger) Stake(ctx context.Context, userID int64, amount decimal.Decimal, externalRef string) (*domain.LedgerEntry, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	return l.mutate(ctx, Mutation{
		UserID:      userID,
		Kind:        domain.KindStake,
		Delta:       amount.Neg(),
		StakedDelta: amount,
		ExternalRef: externalRef,
	})
}

func (l *ledger) Unstake(ctx context.Context, userID int64, amount decimal.Decimal, externalRef string) (*domain.LedgerEntry, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	return l.mutate(ctx, Mutation{
		UserID:      userID,
		Kind:        domain.KindUnstake,
		Delta:       amount,
		StakedDelta: amount.Neg(),
		ExternalRef: externalRef,
	})
}

func (l *ledger) GetBalance(ctx context.Context, userID int64) (domain.Balance, error) {
	row, err := l.store.GetBalance(ctx, userID)
	if err != nil {
		return domain.Balance{}, err
	}
	return toBalance(userID, row), nil
}

func (l *ledger) ListTransactions(ctx context.Context, userID int64, filter domain.TransactionFilter) ([]domain.LedgerEntry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	kinds := make([]string, 0, len(filter.Kinds))
	for _, k := range filter.Kinds {
		if !k.Valid() {
			return nil, domain.ErrBadRequest.Withf("unknown ledger kind %q", k)
		}
		kinds = append(kinds, string(k))
	}

	rows, err := l.store.ListLedgerEntries(ctx, userID, store.LedgerFilter{
		Kinds:     kinds,
		RefPrefix: filter.ExternalRefPrefix,
		Since:     filter.Since,
		Until:     filter.Until,
		Limit:     limit,
		Offset:    max(filter.Offset, 0),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LedgerEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, *toEntry(&rows[i]))
	}
	return entries, nil
}

func (l *ledger) GetStakingInfo(ctx context.Context, userID int64) (domain.StakingInfo, error) {
	balance, err := l.GetBalance(ctx, userID)
	if err != nil {
		return domain.StakingInfo{}, err
	}
	return domain.NewStakingInfo(domain.UserID(userID), balance.Staked), nil
}

func toBalance(userID int64, row *schema.TokenBalance) domain.Balance {
	if row == nil {
		return domain.Balance{UserID: domain.UserID(userID), Available: decimal.Zero, Staked: decimal.Zero}
	}
	return domain.Balance{
		UserID:    domain.UserID(row.UserID),
		Available: row.Available,
		Staked:    row.Staked,
	}
}

func toEntry(row *schema.LedgerTransaction) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:          row.ID,
		UserID:      domain.UserID(row.UserID),
		Kind:        domain.LedgerKind(row.Kind),
		Amount:      row.Amount,
		ExternalRef: row.ExternalRef,
		CourseID:    row.CourseID,
		CreatedAt:   row.CreatedAt,
	}
}
