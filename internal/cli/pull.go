package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conorfennell/drill/internal/gitsource"
)

func init() {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Clone or pull the deck directory from its git remote",
		Args:  cobra.NoArgs,
		RunE:  runPull,
	}
	RootCmd.AddCommand(cmd)
}

func runPull(cmd *cobra.Command, _ []string) error {
	if err := gitsource.Sync(cmd.Context(), cfg.Remote, cfg.Root, cmd.ErrOrStderr(), logger); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deck directory %s is up to date.\n", cfg.Root)
	return nil
}
