package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/teocoin/settlement-engine/internal/store/schema"
)

// LedgerFilter narrows a user's ledger listing
type LedgerFilter struct {
	Kinds     []string
	RefPrefix string
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}

// LedgerSumFilter selects ledger rows to aggregate
type LedgerSumFilter struct {
	CourseID  *int64
	Kind      string
	RefPrefix string
}

// DecisionFilter narrows a decision listing
type DecisionFilter struct {
	TeacherID *int64
	State     string
	Limit     int
	Offset    int
}

// Store defines the interface for database operations
type Store interface {
	// WithTx runs fn in a single transaction (serializable on postgres).
	// Serialization failures, deadlocks and unique-key races are retried with backoff.
	// Calls on a transactional store run fn inline.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// LockSubmission takes a transaction-scoped advisory lock on a submission (postgres only)
	LockSubmission(ctx context.Context, submissionID int64) error
	// LockBalances creates missing balance rows and locks all of them in ascending user order
	LockBalances(ctx context.Context, userIDs ...int64) (map[int64]*schema.TokenBalance, error)
	// LockDecision locks a decision row and loads its snapshot; nil if absent
	LockDecision(ctx context.Context, id string) (*schema.Decision, error)

	// GetBalance returns the balance row of a user; nil if the user never had a mutation
	GetBalance(ctx context.Context, userID int64) (*schema.TokenBalance, error)
	// SaveBalance persists the sub-balances and last entry timestamp of a locked row
	SaveBalance(ctx context.Context, balance *schema.TokenBalance) error

	// GetLedgerEntry finds the row for (user, kind, external_ref); nil if absent
	GetLedgerEntry(ctx context.Context, userID int64, kind string, externalRef string) (*schema.LedgerTransaction, error)
	// CreateLedgerEntry appends a ledger row
	CreateLedgerEntry(ctx context.Context, entry *schema.LedgerTransaction) error
	// ListLedgerEntries lists a user's ledger rows, newest first
	ListLedgerEntries(ctx context.Context, userID int64, filter LedgerFilter) ([]schema.LedgerTransaction, error)
	// ListLedgerEntriesByRefPrefix lists every user's rows whose external_ref starts with prefix
	ListLedgerEntriesByRefPrefix(ctx context.Context, prefix string) ([]schema.LedgerTransaction, error)
	// SumLedgerAmounts sums the amounts of matching rows
	SumLedgerAmounts(ctx context.Context, filter LedgerSumFilter) (decimal.Decimal, error)

	// CreateDecision persists a snapshot and its decision
	CreateDecision(ctx context.Context, snapshot *schema.DiscountSnapshot, decision *schema.Decision) error
	// GetDecision loads a decision with its snapshot; nil if absent
	GetDecision(ctx context.Context, id string) (*schema.Decision, error)
	// TransitionDecision moves a PENDING decision to a terminal state; false if it was no longer PENDING
	TransitionDecision(ctx context.Context, id string, to string, decidedAt time.Time, settlement []byte) (bool, error)
	// ListDecisions lists decisions, newest first
	ListDecisions(ctx context.Context, filter DecisionFilter) ([]schema.Decision, error)
	// ListExpiredDecisionIDs returns PENDING decisions with expires_at <= now, oldest expiry first
	ListExpiredDecisionIDs(ctx context.Context, now time.Time, limit int) ([]string, error)

	// GetAutoRule returns a teacher's auto rule; nil if unset
	GetAutoRule(ctx context.Context, teacherID int64) (*schema.TeacherAutoRule, error)
	// UpsertAutoRule creates or replaces a teacher's auto rule
	UpsertAutoRule(ctx context.Context, rule *schema.TeacherAutoRule) error

	// CreateChainSubmission records a pending chain submission
	CreateChainSubmission(ctx context.Context, submission *schema.ChainSubmission) error
	// GetChainSubmission loads a chain submission; nil if absent
	GetChainSubmission(ctx context.Context, id string) (*schema.ChainSubmission, error)
	// UpdateChainSubmission moves a submission from one of the given statuses; false if it was in none of them
	UpdateChainSubmission(ctx context.Context, id string, from []string, input UpdateChainSubmissionInput) (bool, error)
	// ListChainSubmissions lists submissions in a status, oldest first
	ListChainSubmissions(ctx context.Context, status string, limit int) ([]schema.ChainSubmission, error)
}

// UpdateChainSubmissionInput carries the new state of a chain submission
type UpdateChainSubmissionInput struct {
	Status    string
	TxHash    *string
	LastError *string
}
