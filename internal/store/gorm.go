package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/store/schema"
)

type gormStore struct {
	db         *gorm.DB
	inTx       bool
	maxRetries uint64
}

// Option configures the store
type Option func(*gormStore)

// WithTxMaxRetries bounds how many times a retryable transaction is replayed
func WithTxMaxRetries(n int) Option {
	return func(s *gormStore) {
		if n >= 0 {
			s.maxRetries = uint64(n)
		}
	}
}

// NewStore creates a store over a gorm connection (postgres in production, sqlite in tests)
func NewStore(db *gorm.DB, opts ...Option) Store {
	s := &gormStore{db: db, maxRetries: defaultTxMaxRetries}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *gormStore) isPostgres() bool {
	return s.db.Dialector.Name() == "postgres"
}

// LockSubmission serializes reward observation for one submission
func (s *gormStore) LockSubmission(ctx context.Context, submissionID int64) error {
	if !s.isPostgres() {
		return nil
	}
	if err := s.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", submissionID).Error; err != nil {
		return fmt.Errorf("failed to lock submission: %w", err)
	}
	return nil
}

// LockBalances creates missing balance rows and locks them ordered by user id
func (s *gormStore) LockBalances(ctx context.Context, userIDs ...int64) (map[int64]*schema.TokenBalance, error) {
	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return map[int64]*schema.TokenBalance{}, nil
	}

	now := time.Now().UTC()
	rows := make([]schema.TokenBalance, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, schema.TokenBalance{
			UserID:    id,
			Available: decimal.Zero,
			Staked:    decimal.Zero,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	db := s.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to ensure balances: %w", err)
	}

	var locked []schema.TokenBalance
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id IN ?", ids).
		Order("user_id ASC").
		Find(&locked).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock balances: %w", err)
	}

	result := make(map[int64]*schema.TokenBalance, len(locked))
	for i := range locked {
		result[locked[i].UserID] = &locked[i]
	}
	return result, nil
}

// LockDecision locks a decision row, then loads its snapshot
func (s *gormStore) LockDecision(ctx context.Context, id string) (*schema.Decision, error) {
	db := s.db.WithContext(ctx)

	var decision schema.Decision
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&decision).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock decision: %w", err)
	}

	if err := db.Where("id = ?", decision.SnapshotID).First(&decision.Snapshot).Error; err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &decision, nil
}

func (s *gormStore) GetBalance(ctx context.Context, userID int64) (*schema.TokenBalance, error) {
	var balance schema.TokenBalance
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &balance, nil
}

func (s *gormStore) SaveBalance(ctx context.Context, balance *schema.TokenBalance) error {
	balance.UpdatedAt = time.Now().UTC()
	err := s.db.WithContext(ctx).
		Model(&schema.TokenBalance{}).
		Where("user_id = ?", balance.UserID).
		Updates(map[string]any{
			"available":     balance.Available,
			"staked":        balance.Staked,
			"last_entry_at": balance.LastEntryAt,
			"updated_at":    balance.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	return nil
}

func (s *gormStore) GetLedgerEntry(ctx context.Context, userID int64, kind string, externalRef string) (*schema.LedgerTransaction, error) {
	var entry schema.LedgerTransaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND external_ref = ?", userID, kind, externalRef).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return &entry, nil
}

func (s *gormStore) CreateLedgerEntry(ctx context.Context, entry *schema.LedgerTransaction) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

func (s *gormStore) ListLedgerEntries(ctx context.Context, userID int64, filter LedgerFilter) ([]schema.LedgerTransaction, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(filter.Kinds) > 0 {
		q = q.Where("kind IN ?", filter.Kinds)
	}
	if filter.RefPrefix != "" {
		q = q.Where(`external_ref LIKE ? ESCAPE '\'`, likePrefix(filter.RefPrefix))
	}
	if filter.Since != nil {
		q = q.Where("created_at >= ?", filter.Since.UTC())
	}
	if filter.Until != nil {
		q = q.Where("created_at < ?", filter.Until.UTC())
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var entries []schema.LedgerTransaction
	if err := q.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

func (s *gormStore) ListLedgerEntriesByRefPrefix(ctx context.Context, prefix string) ([]schema.LedgerTransaction, error) {
	var entries []schema.LedgerTransaction
	err := s.db.WithContext(ctx).
		Where(`external_ref LIKE ? ESCAPE '\'`, likePrefix(prefix)).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries by ref: %w", err)
	}
	return entries, nil
}

// SumLedgerAmounts adds matching amounts in decimal arithmetic so sqlite's float storage never leaks into totals
func (s *gormStore) SumLedgerAmounts(ctx context.Context, filter LedgerSumFilter) (decimal.Decimal, error) {
	q := s.db.WithContext(ctx).Model(&schema.LedgerTransaction{})
	if filter.CourseID != nil {
		q = q.Where("course_id = ?", *filter.CourseID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.RefPrefix != "" {
		q = q.Where(`external_ref LIKE ? ESCAPE '\'`, likePrefix(filter.RefPrefix))
	}

	var rows []struct {
		Amount decimal.Decimal
	}
	if err := q.Select("amount").Find(&rows).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum ledger amounts: %w", err)
	}

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}
	return total, nil
}

func (s *gormStore) CreateDecision(ctx context.Context, snapshot *schema.DiscountSnapshot, decision *schema.Decision) error {
	db := s.db.WithContext(ctx)
	if err := db.Create(snapshot).Error; err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	decision.SnapshotID = snapshot.ID
	if err := db.Omit(clause.Associations).Create(decision).Error; err != nil {
		return fmt.Errorf("failed to create decision: %w", err)
	}
	decision.Snapshot = *snapshot
	return nil
}

func (s *gormStore) GetDecision(ctx context.Context, id string) (*schema.Decision, error) {
	var decision schema.Decision
	err := s.db.WithContext(ctx).Preload("Snapshot").Where("id = ?", id).First(&decision).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}
	return &decision, nil
}

// TransitionDecision is a compare-and-set on state = PENDING
func (s *gormStore) TransitionDecision(ctx context.Context, id string, to string, decidedAt time.Time, settlement []byte) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&schema.Decision{}).
		Where("id = ? AND state = ?", id, string(domain.DecisionPending)).
		Updates(map[string]any{
			"state":      to,
			"decided_at": decidedAt.UTC(),
			"settlement": datatypes.JSON(settlement),
			"updated_at": decidedAt.UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition decision: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *gormStore) ListDecisions(ctx context.Context, filter DecisionFilter) ([]schema.Decision, error) {
	q := s.db.WithContext(ctx).Preload("Snapshot")
	if filter.TeacherID != nil {
		q = q.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.State != "" {
		q = q.Where("state = ?", filter.State)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var decisions []schema.Decision
	if err := q.Order("created_at DESC").Order("id DESC").Find(&decisions).Error; err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	return decisions, nil
}

func (s *gormStore) ListExpiredDecisionIDs(ctx context.Context, now time.Time, limit int) ([]string, error) {
	q := s.db.WithContext(ctx).
		Model(&schema.Decision{}).
		Where("state = ? AND expires_at <= ?", string(domain.DecisionPending), now.UTC()).
		Order("expires_at ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var ids []string
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list expired decisions: %w", err)
	}
	return ids, nil
}

func (s *gormStore) GetAutoRule(ctx context.Context, teacherID int64) (*schema.TeacherAutoRule, error) {
	var rule schema.TeacherAutoRule
	err := s.db.WithContext(ctx).Where("teacher_id = ?", teacherID).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get auto rule: %w", err)
	}
	return &rule, nil
}

func (s *gormStore) UpsertAutoRule(ctx context.Context, rule *schema.TeacherAutoRule) error {
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "teacher_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"mode", "threshold_teo", "updated_at"}),
	}).Create(rule).Error
	if err != nil {
		return fmt.Errorf("failed to upsert auto rule: %w", err)
	}
	return nil
}

func (s *gormStore) CreateChainSubmission(ctx context.Context, submission *schema.ChainSubmission) error {
	if err := s.db.WithContext(ctx).Create(submission).Error; err != nil {
		return fmt.Errorf("failed to create chain submission: %w", err)
	}
	return nil
}

func (s *gormStore) GetChainSubmission(ctx context.Context, id string) (*schema.ChainSubmission, error) {
	var submission schema.ChainSubmission
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chain submission: %w", err)
	}
	return &submission, nil
}

func (s *gormStore) UpdateChainSubmission(ctx context.Context, id string, from []string, input UpdateChainSubmissionInput) (bool, error) {
	updates := map[string]any{
		"status":     input.Status,
		"updated_at": time.Now().UTC(),
	}
	if input.TxHash != nil {
		updates["tx_hash"] = *input.TxHash
	}
	if input.LastError != nil {
		updates["last_error"] = *input.LastError
	}

	res := s.db.WithContext(ctx).
		Model(&schema.ChainSubmission{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update chain submission: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *gormStore) ListChainSubmissions(ctx context.Context, status string, limit int) ([]schema.ChainSubmission, error) {
	q := s.db.WithContext(ctx).Where("status = ?", status).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var submissions []schema.ChainSubmission
	if err := q.Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to list chain submissions: %w", err)
	}
	return submissions, nil
}

// likePrefix escapes LIKE wildcards so refs such as "submission_student:" match literally
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
