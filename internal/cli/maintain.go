package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/drill/internal/domain"
	"github.com/conorfennell/drill/internal/reconcile"
	"github.com/conorfennell/drill/internal/storage"
	"github.com/conorfennell/drill/internal/tree"
)

func init() {
	cmd := &cobra.Command{
		Use:   "prune [dir]",
		Short: "Delete schedule entries whose questions no longer exist",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPrune,
	}
	RootCmd.AddCommand(cmd)
}

// prune reconciles the store with the decks under root. It is a no-op when
// no store has been created yet.
func prune(ctx context.Context, root string) (int64, error) {
	if !storage.Exists(cfg.DB) {
		logger.Debug("prune skipped, no database", "db", cfg.DB)
		return 0, nil
	}
	s, err := openStore()
	if err != nil {
		return 0, err
	}
	defer s.Close()

	return reconcile.Prune(ctx, s, root, cfg.Ext, reconcile.Basis(cfg.PruneBasis), logger)
}

func runPrune(cmd *cobra.Command, args []string) error {
	root := cfg.Root
	if len(args) == 1 {
		root = args[0]
	}
	deleted, err := prune(cmd.Context(), root)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d orphaned schedule entries.\n", deleted)
	return nil
}

func runTree(cmd *cobra.Command, root string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if _, err := os.Stat(root); os.IsNotExist(err) {
		fmt.Fprintf(out, "Path not found: %s\n", root)
		return nil
	}
	if _, err := prune(ctx, root); err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	sched, err := newScheduler()
	if err != nil {
		return err
	}

	today := time.Now()
	err = tree.Render(out, root, cfg.Ext, func(path string) (int, error) {
		return reconcile.CountDue(ctx, s, sched, path, today)
	})
	if errors.Is(err, domain.ErrNotFound) {
		fmt.Fprintf(out, "Path not found: %s\n", root)
		return nil
	}
	return err
}

func runForget(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	if !isFile(path) {
		fmt.Fprintf(out, "File not found: %s\n", path)
		return nil
	}
	if !storage.Exists(cfg.DB) {
		fmt.Fprintln(out, "No database exists.")
		return nil
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	found, deleted, err := reconcile.Forget(cmd.Context(), s, path)
	if err != nil {
		return err
	}
	if found == 0 {
		fmt.Fprintln(out, "No questions found in this file.")
		return nil
	}
	logger.Info("forgot questions", "file", path, "questions", found, "deleted", deleted)
	fmt.Fprintf(out, "Forgot %d question(s) from schedule.\n", deleted)
	return nil
}
