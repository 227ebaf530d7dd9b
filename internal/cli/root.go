// Package cli implements teoctl, the operator CLI of the settlement engine
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teocoin/settlement-engine/internal/api/shared/executor"
)

// ExecutorFactory opens the engine for one command run. The returned func releases it.
type ExecutorFactory func(ctx context.Context, configFile, envPath string) (executor.Executor, func(), error)

type app struct {
	factory    ExecutorFactory
	configFile string
	envPath    string
	exec       executor.Executor
	release    func()
}

// Execute runs teoctl with os.Args and releases the engine afterwards
func Execute(ctx context.Context, factory ExecutorFactory) error {
	a := &app{factory: factory}
	defer a.close()
	return a.rootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the teoctl command tree. The engine opened by a command
// is released when the command succeeds.
func NewRootCommand(factory ExecutorFactory) *cobra.Command {
	a := &app{factory: factory}
	return a.rootCommand()
}

func (a *app) close() {
	if a.release != nil {
		a.release()
		a.release = nil
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "teoctl",
		Short:         "Operate the TeoCoin settlement engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			exec, release, err := a.factory(cmd.Context(), a.configFile, a.envPath)
			if err != nil {
				return err
			}
			a.exec, a.release = exec, release
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&a.envPath, "env", "config/", "Path to environment files")

	root.AddCommand(
		a.balanceCmd(),
		a.transactionsCmd(),
		a.stakeCmd("stake"),
		a.stakeCmd("unstake"),
		a.stakingCmd(),
		a.chainBalanceCmd(),
		a.decisionsCmd(),
		a.autoRuleCmd(),
		a.sweepCmd(),
		a.withdrawalCmd(),
	)
	return root
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return id, nil
}
