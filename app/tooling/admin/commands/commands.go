// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// New constructs the root command with every admin command attached.
func New(log *zap.SugaredLogger, build string) *cobra.Command {
	root := cobra.Command{
		Use:           "admin",
		Short:         "Administrative tasks for the noobchain node",
		Version:       build,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		simulateCmd(log),
		keygenCmd(log),
		balancesCmd(),
		transactionsCmd(),
	)

	return &root
}
