package gitsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// newOrigin creates a repository with one committed deck file.
func newOrigin(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "deck.txt"), []byte("? Q\nA\n"), 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("deck.txt"); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err = wt.Commit("add deck", &git.CommitOptions{
		Author: &object.Signature{Name: "drill", Email: "drill@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return dir
}

func TestSyncClonesThenPulls(t *testing.T) {
	ctx := context.Background()
	origin := newOrigin(t)
	root := filepath.Join(t.TempDir(), "anki")

	if err := Sync(ctx, origin, root, nil, nil); err != nil {
		t.Fatalf("clone: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "deck.txt")); err != nil {
		t.Fatalf("Expected the deck to be cloned: %v", err)
	}

	// Nothing new upstream: pulling is still a success.
	if err := Sync(ctx, "", root, nil, nil); err != nil {
		t.Errorf("Expected an up-to-date pull to succeed, got %v", err)
	}
}

func TestSyncWithoutRemote(t *testing.T) {
	ctx := context.Background()

	missing := filepath.Join(t.TempDir(), "anki")
	if err := Sync(ctx, "", missing, nil, nil); !errors.Is(err, ErrNoRemote) {
		t.Errorf("Expected ErrNoRemote for a missing root, got %v", err)
	}

	plain := t.TempDir()
	if err := Sync(ctx, "", plain, nil, nil); !errors.Is(err, ErrNoRemote) {
		t.Errorf("Expected ErrNoRemote for a plain directory, got %v", err)
	}
}
