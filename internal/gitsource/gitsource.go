// Package gitsource keeps a deck directory in sync with a git remote.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
)

// ErrNoRemote is returned when root is not a repository and no remote URL
// was given to clone from.
var ErrNoRemote = errors.New("deck directory is not a git repository and no remote is configured")

// Sync clones url into root if root doesn't exist, or pulls origin if root
// is already a repository. An empty url is fine for pulling. Progress goes
// to progress when it is non-nil.
func Sync(ctx context.Context, url, root string, progress io.Writer, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	_, err := os.Stat(root)
	if os.IsNotExist(err) {
		if url == "" {
			return ErrNoRemote
		}
		log.Info("cloning deck repository", "url", url, "root", root)
		_, err := git.PlainCloneContext(ctx, root, false, &git.CloneOptions{
			URL:      url,
			Progress: progress,
		})
		if err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", url, err)
		}
		log.Info("clone successful", "root", root)
		return nil
	} else if err != nil {
		return fmt.Errorf("error checking path %s: %w", root, err)
	}

	repo, err := git.PlainOpen(root)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return ErrNoRemote
		}
		return fmt.Errorf("failed to open existing repo at %s: %w", root, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree for repo at %s: %w", root, err)
	}

	log.Info("pulling deck repository", "root", root)
	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName: git.DefaultRemoteName,
		Progress:   progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull changes for repo at %s: %w", root, err)
	}
	log.Info("pull successful (or already up-to-date)", "root", root)
	return nil
}
