// Package session runs interactive review sessions over a single deck file.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/conorfennell/drill/internal/domain"
	"github.com/conorfennell/drill/internal/knol"
	"github.com/conorfennell/drill/internal/parser"
	"github.com/conorfennell/drill/internal/schedule"
)

// ErrNotFound is returned when the deck file does not exist.
var ErrNotFound = domain.ErrNotFound

// Presenter shows a chunk with its answer hidden and reports what the user
// decided. It blocks until the user is done with the card.
type Presenter interface {
	Present(ctx context.Context, text, label string) (domain.Outcome, error)
}

// Editor opens a deck file for editing, near locator when it is non-empty.
type Editor interface {
	Edit(ctx context.Context, path, locator string) error
}

// Result says how a session ended.
type Result int

const (
	// NothingDue means the first selection pass found no due cards.
	NothingDue Result = iota
	// Completed means every due card was reviewed.
	Completed
	// Quit means the user quit mid-session.
	Quit
	// NoHistory means undo was requested with nothing left to undo.
	NoHistory
)

func (r Result) String() string {
	switch r {
	case NothingDue:
		return "nothing due"
	case Completed:
		return "completed"
	case Quit:
		return "quit"
	case NoHistory:
		return "undo with empty history"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Report summarizes a finished session.
type Report struct {
	Result   Result
	Reviewed int // cards graded and not undone
}

// Engine drives review sessions. Store, Scheduler, Presenter and Editor are
// required; the rest have defaults.
type Engine struct {
	Store     schedule.Store
	Scheduler *schedule.Scheduler
	Presenter Presenter
	Editor    Editor

	// Parse splits a deck file into chunks. Defaults to parser.ParseFile.
	Parse func(path string) ([]domain.Chunk, error)
	// Now is the clock used for due checks and grading. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

type run struct {
	*Engine
	path     string
	reviewed map[string]struct{}
	history  history
	log      *slog.Logger
}

// Run reviews the due cards of the file at path until none are left, the
// user quits, or undo is requested with an empty history. The file is
// re-read before every selection pass so edits are picked up.
func (e *Engine) Run(ctx context.Context, path string) (Report, error) {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return Report{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	r := &run{
		Engine:   e,
		path:     path,
		reviewed: make(map[string]struct{}),
		log:      e.logger().With("session", uuid.NewString(), "file", path),
	}
	r.log.Info("review session started")

	result, err := r.loop(ctx)
	if err != nil {
		r.log.Error("review session failed", "error", err)
		return Report{}, err
	}

	r.log.Info("review session ended", "result", result.String(), "reviewed", len(r.reviewed))
	return Report{Result: result, Reviewed: len(r.reviewed)}, nil
}

func (r *run) loop(ctx context.Context) (Result, error) {
	for {
		due, err := r.selectDue(ctx)
		if err != nil {
			return 0, err
		}
		if len(due) == 0 {
			if len(r.reviewed) == 0 {
				return NothingDue, nil
			}
			return Completed, nil
		}
		r.log.Debug("selected due cards", "count", len(due))

		result, done, err := r.present(ctx, newQueue(due))
		if err != nil || done {
			return result, err
		}
	}
}

// selectDue parses the deck afresh and returns its due cards in file order,
// leaving out cards already graded this session.
func (r *run) selectDue(ctx context.Context) ([]domain.Card, error) {
	chunks, err := r.parse(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", r.path, err)
	}

	cards := lo.UniqBy(knol.Cards(chunks), func(c domain.Card) string { return c.ID })
	cards = lo.Reject(cards, func(c domain.Card, _ int) bool {
		_, seen := r.reviewed[c.ID]
		return seen
	})

	today := r.now()
	var due []domain.Card
	for _, c := range cards {
		isDue, err := r.Scheduler.IsDue(ctx, r.Store, c.ID, today)
		if err != nil {
			return nil, err
		}
		if isDue {
			due = append(due, c)
		}
	}
	return due, nil
}

// present works through q. done is false when an edit asks for a fresh
// selection pass.
func (r *run) present(ctx context.Context, q *queue) (result Result, done bool, err error) {
	for q.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return 0, true, err
		}

		card := q.PopFront()
		outcome, err := r.Presenter.Present(ctx, card.Chunk.Text, r.path)
		if err != nil {
			return 0, true, fmt.Errorf("failed to present card %s: %w", card.ID, err)
		}
		r.log.Debug("card presented", "id", card.ID, "outcome", outcome.String())

		switch outcome {
		case domain.Quit:
			return Quit, true, nil

		case domain.Edit:
			if err := r.Editor.Edit(ctx, r.path, card.Question()); err != nil {
				return 0, true, fmt.Errorf("failed to edit %s: %w", r.path, err)
			}
			return 0, false, nil

		case domain.Undo:
			rec, ok := r.history.Pop()
			if !ok {
				return NoHistory, true, nil
			}
			if err := schedule.Restore(ctx, r.Store, rec.card.ID, rec.prior); err != nil {
				return 0, true, err
			}
			delete(r.reviewed, rec.card.ID)
			q.PushFront(card)
			q.PushFront(rec.card)
			r.log.Debug("review undone", "id", rec.card.ID, "previously_unseen", rec.prior == nil)

		case domain.Wrong, domain.Skip, domain.Correct:
			prior, next, err := r.Scheduler.Apply(ctx, r.Store, card.ID, outcome, r.now())
			if err != nil {
				return 0, true, err
			}
			r.history.Push(record{card: card, prior: prior})
			r.reviewed[card.ID] = struct{}{}
			r.log.Debug("card graded", "id", card.ID, "index", next.Index, "due", schedule.FormatDate(next.Due))

		default:
			return 0, true, fmt.Errorf("%w: %d", domain.ErrUnknownOutcome, int(outcome))
		}
	}
	return Completed, true, nil
}

// Study presents every chunk in order without reading or writing the
// schedule. Only Quit changes its course. It returns how many chunks were
// shown.
func (e *Engine) Study(ctx context.Context, label string, chunks []domain.Chunk) (int, error) {
	shown := 0
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return shown, err
		}
		outcome, err := e.Presenter.Present(ctx, c.Text, label)
		if err != nil {
			return shown, fmt.Errorf("failed to present card: %w", err)
		}
		shown++
		if outcome == domain.Quit {
			break
		}
	}
	e.logger().Info("custom study ended", "file", label, "shown", shown, "total", len(chunks))
	return shown, nil
}

func (e *Engine) parse(path string) ([]domain.Chunk, error) {
	if e.Parse != nil {
		return e.Parse(path)
	}
	return parser.ParseFile(path)
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
