// Package schedule decides when a question is due and how a review outcome
// moves it along a fixed interval ladder.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/drill/internal/domain"
)

var (
	// ErrInvalidOutcome is returned when an outcome other than Wrong, Skip or
	// Correct reaches the scheduler.
	ErrInvalidOutcome = errors.New("outcome does not grade a card")
	// ErrInvalidLadder is returned by New for a ladder it cannot schedule with.
	ErrInvalidLadder = errors.New("invalid interval ladder")
)

// DefaultLadder holds the days until a card is due again, by interval index.
var DefaultLadder = []int{0, 1, 3, 7, 14, 28, 56}

// UnseenIndex is the interval index assumed for a card with no entry, so a
// first correct answer lands on the third rung.
const UnseenIndex = 1

// Entry is the persisted schedule state of one question.
type Entry struct {
	ID    string
	Due   time.Time // calendar date, midnight UTC
	Index int
}

// Store is the persistence the scheduler and session engine need. Get
// returns (nil, nil) for an identifier that has never been reviewed.
type Store interface {
	Get(ctx context.Context, id string) (*Entry, error)
	Put(ctx context.Context, e Entry) error
	Delete(ctx context.Context, id string) error
}

// Scheduler applies the interval ladder.
type Scheduler struct {
	ladder []int
}

// New returns a Scheduler for ladder, or DefaultLadder when ladder is empty.
// A ladder needs at least two rungs, non-negative and strictly ascending.
func New(ladder []int) (*Scheduler, error) {
	if len(ladder) == 0 {
		ladder = DefaultLadder
	}
	if len(ladder) <= UnseenIndex {
		return nil, fmt.Errorf("%w: need at least %d rungs, got %d", ErrInvalidLadder, UnseenIndex+1, len(ladder))
	}
	for i, days := range ladder {
		if days < 0 {
			return nil, fmt.Errorf("%w: rung %d is negative (%d)", ErrInvalidLadder, i, days)
		}
		if i > 0 && days <= ladder[i-1] {
			return nil, fmt.Errorf("%w: rung %d (%d) does not exceed rung %d (%d)", ErrInvalidLadder, i, days, i-1, ladder[i-1])
		}
	}
	return &Scheduler{ladder: append([]int(nil), ladder...)}, nil
}

// Ladder returns a copy of the scheduler's ladder.
func (s *Scheduler) Ladder() []int {
	return append([]int(nil), s.ladder...)
}

func (s *Scheduler) maxIndex() int {
	return len(s.ladder) - 1
}

// Due reports whether e is due on today. A nil entry is always due.
func Due(e *Entry, today time.Time) bool {
	if e == nil {
		return true
	}
	return !Date(e.Due).After(Date(today))
}

// IsDue looks id up in store and reports whether it is due on today.
func (s *Scheduler) IsDue(ctx context.Context, store Store, id string, today time.Time) (bool, error) {
	e, err := store.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check due date for %s: %w", id, err)
	}
	return Due(e, today), nil
}

// Next computes the entry that follows prior after outcome on today. A nil
// prior is treated as an unseen card at UnseenIndex.
func (s *Scheduler) Next(id string, prior *Entry, outcome domain.Outcome, today time.Time) (Entry, error) {
	current := UnseenIndex
	if prior != nil {
		current = min(max(prior.Index, 0), s.maxIndex())
	}
	today = Date(today)

	next := Entry{ID: id}
	switch outcome {
	case domain.Wrong:
		next.Index = 0
		next.Due = today
	case domain.Correct:
		next.Index = min(current+1, s.maxIndex())
		next.Due = AddDays(today, s.ladder[next.Index])
	case domain.Skip:
		next.Index = current
		next.Due = today
	default:
		return Entry{}, fmt.Errorf("%w: %s", ErrInvalidOutcome, outcome)
	}
	return next, nil
}

// Apply grades id with outcome and upserts the result. It returns the entry
// that existed before the call (nil if none) and the entry now stored.
func (s *Scheduler) Apply(ctx context.Context, store Store, id string, outcome domain.Outcome, today time.Time) (*Entry, Entry, error) {
	prior, err := store.Get(ctx, id)
	if err != nil {
		return nil, Entry{}, fmt.Errorf("failed to read schedule for %s: %w", id, err)
	}

	next, err := s.Next(id, prior, outcome, today)
	if err != nil {
		return nil, Entry{}, err
	}

	if err := store.Put(ctx, next); err != nil {
		return nil, Entry{}, fmt.Errorf("failed to store schedule for %s: %w", id, err)
	}
	return prior, next, nil
}

// Restore puts id back to prior, deleting it when prior is nil.
func Restore(ctx context.Context, store Store, id string, prior *Entry) error {
	if prior == nil {
		if err := store.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete schedule for %s: %w", id, err)
		}
		return nil
	}
	e := *prior
	e.ID = id
	if err := store.Put(ctx, e); err != nil {
		return fmt.Errorf("failed to restore schedule for %s: %w", id, err)
	}
	return nil
}
