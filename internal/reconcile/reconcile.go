// Package reconcile keeps the schedule store in step with the deck files on
// disk.
package reconcile

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/conorfennell/drill/internal/domain"
	"github.com/conorfennell/drill/internal/knol"
	"github.com/conorfennell/drill/internal/parser"
	"github.com/conorfennell/drill/internal/schedule"
)

// Basis selects which text of a chunk identifies it when pruning.
type Basis string

const (
	// BasisQuestion hashes the question line, as due checks do.
	BasisQuestion Basis = "question"
	// BasisChunk hashes the whole chunk. Any entry whose card has an answer
	// is then orphaned, since the schedule is keyed on question lines.
	BasisChunk Basis = "chunk"
)

// ID returns the identifier of c under b.
func (b Basis) ID(c domain.Chunk) string {
	if b == BasisChunk {
		return knol.ChunkID(c)
	}
	return knol.QuestionID(c)
}

// Store is what pruning and forgetting need from the schedule store.
type Store interface {
	AllIdentifiers(ctx context.Context) ([]string, error)
	DeleteIDs(ctx context.Context, ids []string) (int64, error)
}

// DeckFiles lists the files under root whose name ends in ext, in walk order.
func DeckFiles(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err // Propagate errors from WalkDir
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

// Prune deletes every store entry whose identifier matches no chunk in the
// deck files under root. It never creates entries. A missing root, or a root
// that is a single file, leaves the store alone. Any unreadable deck file
// aborts the prune so its cards are not mistaken for orphans.
func Prune(ctx context.Context, store Store, root, ext string, basis Basis, log *slog.Logger) (int64, error) {
	if log == nil {
		log = slog.Default()
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("prune skipped, root does not exist", "root", root)
			return 0, nil
		}
		return 0, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		log.Debug("prune skipped, root is a file", "root", root)
		return 0, nil
	}

	files, err := DeckFiles(root, ext)
	if err != nil {
		return 0, err
	}

	current := make(map[string]struct{})
	for _, path := range files {
		chunks, err := parser.ParseFile(path)
		if err != nil {
			return 0, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for _, c := range chunks {
			current[basis.ID(c)] = struct{}{}
		}
	}

	stored, err := store.AllIdentifiers(ctx)
	if err != nil {
		return 0, err
	}
	orphans := lo.Filter(stored, func(id string, _ int) bool {
		_, found := current[id]
		return !found
	})

	deleted, err := store.DeleteIDs(ctx, orphans)
	if err != nil {
		return 0, err
	}

	log.Info("prune complete",
		"root", root,
		"basis", string(basis),
		"files", len(files),
		"chunks", len(current),
		"stored", len(stored),
		"orphans_deleted", deleted,
	)
	return deleted, nil
}

// Forget deletes the schedule entries of every question in the file at
// path. It returns the number of chunks in the file and the number of
// entries deleted.
func Forget(ctx context.Context, store Store, path string) (int, int64, error) {
	if !isFile(path) {
		return 0, 0, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}

	chunks, err := parser.ParseFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(chunks) == 0 {
		return 0, 0, nil
	}

	ids := lo.Map(chunks, func(c domain.Chunk, _ int) string { return knol.QuestionID(c) })
	deleted, err := store.DeleteIDs(ctx, ids)
	if err != nil {
		return len(chunks), 0, err
	}
	return len(chunks), deleted, nil
}

// CountDue returns how many questions in the file at path are due on today.
// A path that is not a regular file counts zero.
func CountDue(ctx context.Context, store schedule.Store, sched *schedule.Scheduler, path string, today time.Time) (int, error) {
	if !isFile(path) {
		return 0, nil
	}

	chunks, err := parser.ParseFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	count := 0
	for _, c := range chunks {
		due, err := sched.IsDue(ctx, store, knol.QuestionID(c), today)
		if err != nil {
			return 0, err
		}
		if due {
			count++
		}
	}
	return count, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
