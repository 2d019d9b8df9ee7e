// Package vim presents cards and edits deck files in vim.
//
// A card is piped into vim with its answer deleted from the buffer; the user
// brings it back with :earlier 9999h and grades the card by quitting with
// :cq N, where N is the outcome code.
package vim

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/conorfennell/drill/internal/domain"
)

const clearScreen = "\033[H\033[2J"

// Vim runs the editor binary named by Command.
type Vim struct {
	Command string
	Stdin   io.Reader // terminal input for Edit; Present feeds the card instead
	Stdout  io.Writer
	Stderr  io.Writer
	// Clear wipes the terminal before a card and after an edit.
	Clear bool
	Log   *slog.Logger
}

// New returns a Vim that runs command on the process's terminal.
func New(command string, log *slog.Logger) *Vim {
	if log == nil {
		log = slog.Default()
	}
	return &Vim{
		Command: command,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Clear:   true,
		Log:     log,
	}
}

// PresentArgs builds the arguments that open stdin with everything below the
// first line deleted, naming the buffer label when one is given.
func PresentArgs(label string) []string {
	args := []string{"-c", "normal ggjdG"}
	if label != "" {
		args = append(args, "-c", "file "+label)
	}
	return append(args, "-")
}

// EditArgs builds the arguments that open path at line scrolled to the top,
// or at the start when line is zero.
func EditArgs(path string, line int) []string {
	if line <= 0 {
		return []string{path}
	}
	return []string{"+" + strconv.Itoa(line), "-c", "normal zt", path}
}

// Present shows text and maps the editor's exit status onto an outcome.
func (v *Vim) Present(ctx context.Context, text, label string) (domain.Outcome, error) {
	v.clear()

	cmd := exec.CommandContext(ctx, v.Command, PresentArgs(label)...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = v.Stdout
	cmd.Stderr = v.Stderr

	code, err := exitCode(cmd.Run())
	if err != nil {
		return 0, fmt.Errorf("failed to run %s: %w", v.Command, err)
	}
	v.Log.Debug("editor exited", "code", code)
	return domain.OutcomeFromCode(code)
}

// Edit opens path for editing, positioned at the first line containing
// locator when there is one. The editor's exit status is ignored.
func (v *Vim) Edit(ctx context.Context, path, locator string) error {
	line := 0
	if locator != "" {
		n, err := LineOf(path, locator)
		if err != nil {
			v.Log.Warn("could not locate question, opening at top", "path", path, "error", err)
		}
		line = n
	}

	cmd := exec.CommandContext(ctx, v.Command, EditArgs(path, line)...)
	cmd.Stdin = v.Stdin
	cmd.Stdout = v.Stdout
	cmd.Stderr = v.Stderr

	if _, err := exitCode(cmd.Run()); err != nil {
		return fmt.Errorf("failed to run %s: %w", v.Command, err)
	}
	v.clear()
	return nil
}

// ClearScreen wipes the terminal when clearing is enabled.
func (v *Vim) ClearScreen() {
	v.clear()
}

func (v *Vim) clear() {
	if v.Clear && v.Stdout != nil {
		fmt.Fprint(v.Stdout, clearScreen)
	}
}

// LineOf returns the 1-based number of the first line of the file at path
// that contains needle, or 0 when no line does.
func LineOf(path, needle string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; scanner.Scan(); n++ {
		if strings.Contains(scanner.Text(), needle) {
			return n, nil
		}
	}
	return 0, scanner.Err()
}

// exitCode turns the error from exec.Cmd.Run into an exit status. Errors
// other than a non-zero exit are returned as is.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}
