// Package mirror moves TEO between the internal ledger and the token contract.
// Ledger writes commit first; chain submissions run after commit and are tracked
// in chain_submissions so receipts can be reconciled later.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/catalog"
	"github.com/teocoin/settlement-engine/internal/chain"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/ledger"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/store"
	"github.com/teocoin/settlement-engine/internal/store/schema"
)

// Config holds the mirror settings
type Config struct {
	// PlatformWallet receives on-chain deposits
	PlatformWallet string
}

// Withdrawal is the state of one ledger -> chain transfer
type Withdrawal struct {
	ID        string                       `json:"id"`
	UserID    int64                        `json:"user_id"`
	ToAddress string                       `json:"to_address"`
	Amount    decimal.Decimal              `json:"amount"`
	AmountWei string                       `json:"amount_wei"`
	Status    domain.ChainSubmissionStatus `json:"status"`
	TxHash    *string                      `json:"tx_hash,omitempty"`
	LastError *string                      `json:"last_error,omitempty"`
	CreatedAt time.Time                    `json:"created_at"`
}

// Service runs the on-chain mirror flows
//
//go:generate mockgen -source=mirror.go -destination=../mocks/mirror.go -package=mocks -mock_names=Service=MockMirrorService
type Service interface {
	// WithdrawToChain debits the user and mints the amount to their wallet.
	// A failed mint marks the submission FAILED and refunds the user.
	WithdrawToChain(ctx context.Context, userID int64, amount decimal.Decimal) (*Withdrawal, error)

	// DepositFromChain credits the user once the payment to the platform wallet is verified
	DepositFromChain(ctx context.Context, userID int64, txHash string, amount decimal.Decimal) (*domain.LedgerEntry, error)

	// GetWithdrawal returns a withdrawal by id
	GetWithdrawal(ctx context.Context, id string) (*Withdrawal, error)

	// Reconcile polls the receipt of a SUBMITTED withdrawal. A missing receipt leaves it SUBMITTED.
	Reconcile(ctx context.Context, id string) (*Withdrawal, error)
}

type service struct {
	cfg     Config
	store   store.Store
	ledger  ledger.Ledger
	catalog catalog.Catalog
	gateway chain.Gateway
	clock   adapter.Clock
}

// New creates the mirror service
func New(cfg Config, st store.Store, ldg ledger.Ledger, cat catalog.Catalog, gw chain.Gateway, clock adapter.Clock) Service {
	return &service{
		cfg:     cfg,
		store:   st,
		ledger:  ldg,
		catalog: cat,
		gateway: gw,
		clock:   clock,
	}
}

func (s *service) WithdrawToChain(ctx context.Context, userID int64, amount decimal.Decimal) (*Withdrawal, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	amountWei, err := domain.TEOToWei(amount)
	if err != nil {
		return nil, err
	}
	wallet, err := s.wallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	submitter, err := s.gateway.Submitter()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	row := &schema.ChainSubmission{
		ID:        uuid.NewString(),
		UserID:    userID,
		ToAddress: wallet,
		Amount:    amount,
		AmountWei: amountWei.String(),
		Status:    string(domain.ChainSubmissionPending),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		_, err := s.ledger.Apply(ctx, tx, ledger.Mutation{
			UserID:      userID,
			Kind:        domain.KindMintMirror,
			Delta:       amount.Neg(),
			ExternalRef: domain.WithdrawRef(row.ID),
			Metadata:    map[string]any{"to": wallet},
		})
		if err != nil {
			return err
		}
		return tx.CreateChainSubmission(ctx, row)
	})
	if err != nil {
		return nil, err
	}

	// chain submission happens after the debit commits
	txHash, mintErr := submitter.Mint(ctx, wallet, amount, domain.WithdrawRef(row.ID))
	if mintErr != nil {
		withdrawal, err := s.fail(ctx, row.ID, []string{string(domain.ChainSubmissionPending)}, mintErr.Error())
		if err != nil {
			return nil, errors.Join(mintErr, err)
		}
		var derr *domain.Error
		if errors.As(mintErr, &derr) {
			return withdrawal, derr.With("withdrawal_id", row.ID)
		}
		return withdrawal, mintErr
	}

	ok, err := s.store.UpdateChainSubmission(ctx, row.ID, []string{string(domain.ChainSubmissionPending)}, store.UpdateChainSubmissionInput{
		Status: string(domain.ChainSubmissionSubmitted),
		TxHash: &txHash,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvariant.Withf("withdrawal left PENDING before submission was recorded").With("withdrawal_id", row.ID)
	}

	logger.InfoCtx(ctx, "Withdrawal submitted",
		zap.String("withdrawalID", row.ID),
		zap.Int64("userID", userID),
		zap.String("amount", amount.String()),
		zap.String("txHash", txHash))
	return s.GetWithdrawal(ctx, row.ID)
}

// fail marks the submission FAILED and refunds the debit in one transaction
func (s *service) fail(ctx context.Context, id string, from []string, reason string) (*Withdrawal, error) {
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		row, err := tx.GetChainSubmission(ctx, id)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrNotFound.With("withdrawal_id", id)
		}

		ok, err := tx.UpdateChainSubmission(ctx, id, from, store.UpdateChainSubmissionInput{
			Status:    string(domain.ChainSubmissionFailed),
			LastError: &reason,
		})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		_, err = s.ledger.Apply(ctx, tx, ledger.Mutation{
			UserID:      row.UserID,
			Kind:        domain.KindRefund,
			Delta:       row.Amount,
			ExternalRef: domain.WithdrawRefundRef(id),
			Metadata:    map[string]any{"reason": reason},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.WarnCtx(ctx, "Withdrawal failed and refunded", zap.String("withdrawalID", id), zap.String("reason", reason))
	return s.GetWithdrawal(ctx, id)
}

func (s *service) DepositFromChain(ctx context.Context, userID int64, txHash string, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(s.cfg.PlatformWallet) {
		return nil, fmt.Errorf("platform wallet is not configured")
	}
	wallet, err := s.wallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	// the transfer must cover the full claimed amount
	transferred, err := s.gateway.TransferredAmount(ctx, txHash, wallet, s.cfg.PlatformWallet)
	if err != nil {
		return nil, err
	}
	if transferred.LessThan(amount) {
		return nil, domain.ErrPaymentUnverified.
			With("tx_hash", txHash).
			With("user_id", userID).
			With("claimed", amount.String()).
			With("transferred", transferred.String())
	}

	entry, err := s.ledger.Credit(ctx, userID, amount, domain.KindBurnMirror, strings.ToLower(txHash))
	if err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "Deposit credited",
		zap.Int64("userID", userID),
		zap.String("amount", amount.String()),
		zap.String("txHash", txHash))
	return entry, nil
}

func (s *service) GetWithdrawal(ctx context.Context, id string) (*Withdrawal, error) {
	row, err := s.store.GetChainSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound.Withf("withdrawal not found").With("withdrawal_id", id)
	}
	return toWithdrawal(row), nil
}

func (s *service) Reconcile(ctx context.Context, id string) (*Withdrawal, error) {
	withdrawal, err := s.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal.Status != domain.ChainSubmissionSubmitted || withdrawal.TxHash == nil {
		return withdrawal, nil
	}

	status, err := s.gateway.TransactionStatus(ctx, *withdrawal.TxHash)
	if err != nil {
		return nil, err
	}

	submitted := []string{string(domain.ChainSubmissionSubmitted)}
	switch status {
	case chain.TxStatusSuccess:
		ok, err := s.store.UpdateChainSubmission(ctx, id, submitted, store.UpdateChainSubmissionInput{
			Status: string(domain.ChainSubmissionConfirmed),
		})
		if err != nil {
			return nil, err
		}
		if ok {
			logger.InfoCtx(ctx, "Withdrawal confirmed", zap.String("withdrawalID", id), zap.Stringp("txHash", withdrawal.TxHash))
		}
		return s.GetWithdrawal(ctx, id)
	case chain.TxStatusReverted:
		return s.fail(ctx, id, submitted, "transaction reverted")
	}
	return withdrawal, nil
}

func (s *service) wallet(ctx context.Context, userID int64) (string, error) {
	wallet, err := s.catalog.GetWallet(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load wallet: %w", err)
	}
	if !common.IsHexAddress(wallet) {
		return "", domain.ErrWalletMissing.With("user_id", userID)
	}
	return wallet, nil
}

func toWithdrawal(row *schema.ChainSubmission) *Withdrawal {
	return &Withdrawal{
		ID:        row.ID,
		UserID:    row.UserID,
		ToAddress: row.ToAddress,
		Amount:    row.Amount,
		AmountWei: row.AmountWei,
		Status:    domain.ChainSubmissionStatus(row.Status),
		TxHash:    row.TxHash,
		LastError: row.LastError,
		CreatedAt: row.CreatedAt,
	}
}
