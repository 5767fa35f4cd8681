package cli

import (
	"context"

	"github.com/dostini/maelstrom-node/pkg/node"
	"github.com/spf13/cobra"
)

// NewRootCmd returns the command for a node program answering handlers in
// addition to init. The command takes no arguments and no configuration; it
// runs until its input is closed.
func NewRootCmd(use, short string, handlers ...node.Handler) *cobra.Command {
	return &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := node.NewDefaultConfig()
			config.In = cmd.InOrStdin()
			config.Out = cmd.OutOrStdout()
			config.Err = cmd.ErrOrStderr()

			return run(cmd.Context(), config, handlers)
		},
	}
}

func run(ctx context.Context, config *node.Config, handlers []node.Handler) error {
	if ctx == nil {
		ctx = context.Background()
	}

	n := node.NewNode(ctx, config)
	for _, h := range handlers {
		n.Register(h)
	}

	if err := n.Run(); err != nil {
		config.Logger().WithError(err).Error("node stopped")
		return err
	}

	return nil
}
