package vim

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/conorfennell/drill/internal/domain"
)

func TestPresentArgs(t *testing.T) {
	got := PresentArgs("decks/go.txt")
	want := []string{"-c", "normal ggjdG", "-c", "file decks/go.txt", "-"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := PresentArgs(""); !reflect.DeepEqual(got, []string{"-c", "normal ggjdG", "-"}) {
		t.Errorf("Unexpected args without a label: %v", got)
	}
}

func TestEditArgs(t *testing.T) {
	if got, want := EditArgs("deck.txt", 12), []string{"+12", "-c", "normal zt", "deck.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got, want := EditArgs("deck.txt", 0), []string{"deck.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestLineOf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.txt")
	content := "intro\n? What is Go?\nA language\n\n? What is Go? (again)\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	testCases := []struct {
		needle string
		want   int
	}{
		{needle: "? What is Go?", want: 2},
		{needle: "(again)", want: 5},
		{needle: "[regex.*chars]", want: 0},
	}
	for _, tc := range testCases {
		got, err := LineOf(path, tc.needle)
		if err != nil {
			t.Fatalf("LineOf(%q): %v", tc.needle, err)
		}
		if got != tc.want {
			t.Errorf("LineOf(%q) = %d, want %d", tc.needle, got, tc.want)
		}
	}

	if _, err := LineOf(filepath.Join(t.TempDir(), "missing"), "x"); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

// fakeEditor writes a script that copies stdin to the file named in $OUT
// and exits with code.
func fakeEditor(t *testing.T, code string) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "stdin.txt")
	script := filepath.Join(dir, "editor.sh")
	body := "#!/bin/sh\ncat > \"" + out + "\"\nexit " + code + "\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return script, out
}

func TestPresentMapsExitCode(t *testing.T) {
	script, out := fakeEditor(t, "4")
	var stdout bytes.Buffer
	v := &Vim{Command: script, Stdout: &stdout, Stderr: &bytes.Buffer{}, Clear: true, Log: slog.Default()}

	outcome, err := v.Present(context.Background(), "? Q\nanswer", "deck.txt")
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if outcome != domain.Correct {
		t.Errorf("Expected correct, got %s", outcome)
	}

	piped, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read piped stdin: %v", err)
	}
	if string(piped) != "? Q\nanswer" {
		t.Errorf("Expected the chunk on stdin, got %q", piped)
	}
	if stdout.String() != clearScreen {
		t.Errorf("Expected the screen to be cleared first, got %q", stdout.String())
	}
}

func TestPresentUnknownExitCode(t *testing.T) {
	script, _ := fakeEditor(t, "9")
	v := &Vim{Command: script, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}, Log: slog.Default()}

	if _, err := v.Present(context.Background(), "? Q", ""); !errors.Is(err, domain.ErrUnknownOutcome) {
		t.Errorf("Expected ErrUnknownOutcome, got %v", err)
	}
}

func TestPresentMissingBinary(t *testing.T) {
	v := &Vim{Command: filepath.Join(t.TempDir(), "no-such-editor"), Log: slog.Default()}
	if _, err := v.Present(context.Background(), "? Q", ""); err == nil {
		t.Error("Expected an error for a missing editor")
	}
}

func TestEditIgnoresExitStatus(t *testing.T) {
	script, _ := fakeEditor(t, "1")
	path := filepath.Join(t.TempDir(), "deck.txt")
	if err := os.WriteFile(path, []byte("? Q\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	v := &Vim{Command: script, Stdin: strings.NewReader(""), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}, Log: slog.Default()}

	if err := v.Edit(context.Background(), path, "? Q"); err != nil {
		t.Errorf("Expected a non-zero editor exit to be ignored, got %v", err)
	}
}
