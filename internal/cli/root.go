// Package cli implements the drill command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conorfennell/drill/internal/config"
	"github.com/conorfennell/drill/internal/schedule"
	"github.com/conorfennell/drill/internal/storage"
)

var (
	configPath string
	customFile string
	forgetFile string

	cfg       config.Config
	logger    = slog.Default()
	logCloser io.Closer
)

// RootCmd is the top-level command. With a file it reviews that file, with a
// directory (or nothing, meaning the deck root) it prints the due tree.
var RootCmd = &cobra.Command{
	Use:   "drill [path]",
	Short: "Spaced repetition over plain-text question files, reviewed in vim",
	Long: `drill reads files of questions, each starting at a line beginning with '?',
and reviews the ones that are due in vim. Quit vim with :cq N to grade a card:
0 quit, 1 wrong, 2 edit, 3 skip, 4 correct, 5 undo. Reveal the answer with
:earlier 9999h.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
	RunE: runRoot,
}

func init() {
	def := config.Default()
	pf := RootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Config file (default: "+config.DefaultPath()+")")
	pf.String("root", "", "Deck directory (default: "+def.Root+")")
	pf.String("db", "", "Schedule database path (default: <root>/anki.db)")
	pf.String("ext", "", "Deck file extension (default: "+def.Ext+")")
	pf.String("editor", "", "Editor command used to review and edit (default: "+def.Editor+")")
	pf.String("remote", "", "Git remote the deck directory is cloned from")
	pf.String("prune-basis", "", "Identifier basis for pruning: question or chunk (default: "+def.PruneBasis+")")
	pf.String("log-level", "", "Log level: debug, info, warn or error (default: "+def.Log.Level+")")
	pf.String("log-file", "", "Write logs to this file instead of stderr")

	RootCmd.Flags().StringVarP(&customFile, "custom", "f", "", "Custom study: show every question in FILE without scheduling")
	RootCmd.Flags().StringVar(&forgetFile, "forget", "", "Remove the schedule entries of every question in FILE")
}

func setup(cmd *cobra.Command, _ []string) error {
	path, explicit := configPath, cmd.Flags().Changed("config")
	if path == "" {
		path = config.DefaultPath()
	}

	c, err := config.Load(path, explicit, cmd.Flags())
	if err != nil {
		return err
	}
	cfg = c

	l, closer, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	logger, logCloser = l, closer
	logger.Debug("config loaded", "root", cfg.Root, "db", cfg.DB, "ladder", cfg.Ladder)
	return nil
}

func newLogger(c config.Log) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	var out io.Writer = os.Stderr
	var closer io.Closer
	if c.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closer, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	switch {
	case forgetFile != "":
		return runForget(cmd, forgetFile)
	case customFile != "":
		return runStudy(cmd, customFile)
	case len(args) == 1:
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			return runTree(cmd, args[0])
		}
		return runReview(cmd, args[0])
	default:
		return runTree(cmd, cfg.Root)
	}
}

func openStore() (*storage.DB, error) {
	return storage.Open(cfg.DB)
}

func newScheduler() (*schedule.Scheduler, error) {
	return schedule.New(cfg.Ladder)
}
