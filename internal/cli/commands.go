package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/teocoin/settlement-engine/internal/api/shared/dto"
	"github.com/teocoin/settlement-engine/internal/domain"
)

func (a *app) balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance USER_ID",
		Short: "Show a user's available and staked TEO",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("USER_ID", args[0])
			if err != nil {
				return err
			}
			balance, err := a.exec.GetBalance(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), balance)
		},
	}
}

func (a *app) transactionsCmd() *cobra.Command {
	var (
		kinds       []string
		externalRef string
		limit       int
		offset      int
	)
	cmd := &cobra.Command{
		Use:   "transactions USER_ID",
		Short: "List a user's ledger entries, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("USER_ID", args[0])
			if err != nil {
				return err
			}
			filter := domain.TransactionFilter{ExternalRefPrefix: externalRef, Limit: limit, Offset: offset}
			for _, k := range kinds {
				kind := domain.LedgerKind(strings.ToLower(k))
				if !kind.Valid() {
					return fmt.Errorf("unknown kind %q", k)
				}
				filter.Kinds = append(filter.Kinds, kind)
			}
			page, err := a.exec.ListTransactions(cmd.Context(), userID, filter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Filter by ledger kind (repeatable or comma separated)")
	cmd.Flags().StringVar(&externalRef, "external-ref", "", "Filter by external reference prefix")
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

// stakeCmd builds "stake" or "unstake"
func (a *app) stakeCmd(name string) *cobra.Command {
	var ref string
	cmd := &cobra.Command{
		Use:   name + " USER_ID AMOUNT",
		Short: "Move TEO between available and staked (" + name + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("USER_ID", args[0])
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			req := dto.AmountRequest{Amount: amount, ExternalRef: ref}
			op := a.exec.Stake
			if name == "unstake" {
				op = a.exec.Unstake
			}
			info, err := op(cmd.Context(), userID, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
	cmd.Flags().StringVar(&ref, "ref", "", "Idempotency reference")
	return cmd
}

func (a *app) stakingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "staking USER_ID",
		Short: "Show a user's staking tier and commission rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("USER_ID", args[0])
			if err != nil {
				return err
			}
			info, err := a.exec.GetStakingInfo(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
}

func (a *app) chainBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chain-balance USER_ID",
		Short: "Read the on-chain TEO balance of a user's wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("USER_ID", args[0])
			if err != nil {
				return err
			}
			balance, err := a.exec.GetChainBalance(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), balance)
		},
	}
}

func (a *app) decisionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "Inspect and resolve teacher decisions",
	}

	var state string
	var limit, offset int
	list := &cobra.Command{
		Use:   "list TEACHER_ID",
		Short: "List a teacher's decisions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			teacherID, err := parseID("TEACHER_ID", args[0])
			if err != nil {
				return err
			}
			page, err := a.exec.ListDecisions(cmd.Context(), teacherID, state, limit, offset)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}
	list.Flags().StringVar(&state, "state", "", "PENDING, ACCEPTED, DECLINED or EXPIRED")
	list.Flags().IntVar(&limit, "limit", 50, "Page size")
	list.Flags().IntVar(&offset, "offset", 0, "Page offset")

	get := &cobra.Command{
		Use:   "get DECISION_ID",
		Short: "Show a decision with its snapshot and settlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision, err := a.exec.GetDecision(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), decision)
		},
	}

	resolve := &cobra.Command{
		Use:   "resolve DECISION_ID ACCEPT_TEO|DECLINE_TEO",
		Short: "Resolve a PENDING decision on the teacher's behalf",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.exec.ResolveDecision(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}

	cmd.AddCommand(list, get, resolve)
	return cmd
}

func (a *app) autoRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auto-rule",
		Short: "Show or replace a teacher's auto rule",
	}

	get := &cobra.Command{
		Use:   "get TEACHER_ID",
		Short: "Show a teacher's auto rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			teacherID, err := parseID("TEACHER_ID", args[0])
			if err != nil {
				return err
			}
			rule, err := a.exec.GetAutoRule(cmd.Context(), teacherID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rule)
		},
	}

	var threshold string
	set := &cobra.Command{
		Use:   "set TEACHER_ID MANUAL|ALWAYS_ACCEPT|ALWAYS_DECLINE|THRESHOLD",
		Short: "Replace a teacher's auto rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			teacherID, err := parseID("TEACHER_ID", args[0])
			if err != nil {
				return err
			}
			req := dto.AutoRuleRequest{Mode: args[1]}
			if threshold != "" {
				value, err := decimal.NewFromString(threshold)
				if err != nil {
					return fmt.Errorf("invalid threshold %q: %w", threshold, err)
				}
				req.ThresholdTEO = &value
			}
			rule, err := a.exec.SetAutoRule(cmd.Context(), teacherID, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rule)
		},
	}
	set.Flags().StringVar(&threshold, "threshold", "", "TEO threshold for THRESHOLD mode")

	cmd.AddCommand(get, set)
	return cmd
}

func (a *app) sweepCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire one batch of overdue PENDING decisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.exec.SweepExpired(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]int{
				"listed":  result.Listed,
				"expired": result.Expired,
				"skipped": result.Skipped,
				"failed":  result.Failed,
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum decisions to expire (0 uses the sweeper batch size)")
	return cmd
}

func (a *app) withdrawalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdrawal",
		Short: "Inspect and reconcile chain withdrawals",
	}

	get := &cobra.Command{
		Use:   "get WITHDRAWAL_ID",
		Short: "Show a withdrawal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.exec.GetWithdrawal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), w)
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile WITHDRAWAL_ID",
		Short: "Poll the mint receipt of a SUBMITTED withdrawal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.exec.ReconcileWithdrawal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), w)
		},
	}

	cmd.AddCommand(get, reconcile)
	return cmd
}
