package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conorfennell/drill/internal/domain"
	"github.com/conorfennell/drill/internal/parser"
	"github.com/conorfennell/drill/internal/session"
	"github.com/conorfennell/drill/internal/vim"
)

func newVim(cmd *cobra.Command) *vim.Vim {
	v := vim.New(cfg.Editor, logger)
	v.Stdout = cmd.OutOrStdout()
	return v
}

func newEngine(v *vim.Vim) (*session.Engine, func(), error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	sched, err := newScheduler()
	if err != nil {
		s.Close()
		return nil, nil, err
	}

	engine := &session.Engine{
		Store:     s,
		Scheduler: sched,
		Presenter: v,
		Editor:    v,
		Logger:    logger,
	}
	return engine, func() { s.Close() }, nil
}

func runReview(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	if !isFile(path) {
		fmt.Fprintf(out, "File not found: %s\n", path)
		return nil
	}

	v := newVim(cmd)
	engine, closeStore, err := newEngine(v)
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := engine.Run(cmd.Context(), path)
	v.ClearScreen()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Fprintf(out, "File not found: %s\n", path)
			return nil
		}
		return err
	}

	if report.Result == session.NothingDue {
		fmt.Fprintln(out, "No due questions in this file.")
	}
	return nil
}

func runStudy(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	if !isFile(path) {
		fmt.Fprintf(out, "File not found: %s\n", path)
		return nil
	}

	chunks, err := parser.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(chunks) == 0 {
		fmt.Fprintln(out, "No questions found in this file.")
		return nil
	}
	fmt.Fprintf(out, "Custom study mode: %d questions\n\n", len(chunks))

	// Custom study never touches the schedule, so no store is opened.
	v := newVim(cmd)
	engine := &session.Engine{Presenter: v, Logger: logger}
	_, err = engine.Study(cmd.Context(), path, chunks)
	v.ClearScreen()
	return err
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
