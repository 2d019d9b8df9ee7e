// Package tree prints a deck directory with the number of due questions
// next to every deck file.
package tree

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/conorfennell/drill/internal/domain"
)

// CountFunc returns the number of due questions in a deck file.
type CountFunc func(path string) (int, error)

// Render writes the tree rooted at root to w. Hidden entries are skipped,
// directories sort before files, and only files ending in ext are listed.
// A root that is a file prints as a single "<name> <count>" line.
func Render(w io.Writer, root, ext string, count CountFunc) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, root)
		}
		return err
	}

	if !info.IsDir() {
		n, err := count(root)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s %d\n", info.Name(), n)
		return err
	}

	if _, err := fmt.Fprintln(w, "."); err != nil {
		return err
	}
	return walk(w, root, "", ext, count)
}

func walk(w io.Writer, dir, prefix, ext string, count CountFunc) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	entries = lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		if strings.HasPrefix(e.Name(), ".") {
			return false
		}
		return isDir(dir, e) || filepath.Ext(e.Name()) == ext
	})
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := isDir(dir, entries[i]), isDir(dir, entries[j])
		if di != dj {
			return di
		}
		return entries[i].Name() < entries[j].Name()
	})

	for i, e := range entries {
		connector, extension := "├── ", "│   "
		if i == len(entries)-1 {
			connector, extension = "└── ", "    "
		}

		path := filepath.Join(dir, e.Name())
		if isDir(dir, e) {
			if _, err := fmt.Fprintf(w, "%s%s%s/\n", prefix, connector, e.Name()); err != nil {
				return err
			}
			if err := walk(w, path, prefix+extension, ext, count); err != nil {
				return err
			}
			continue
		}

		n, err := count(path)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%s%s %d\n", prefix, connector, e.Name(), n); err != nil {
			return err
		}
	}
	return nil
}

// isDir follows symlinks, so a linked deck directory is walked like a real one.
func isDir(parent string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}
