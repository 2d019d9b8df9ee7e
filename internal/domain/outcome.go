package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownOutcome is returned when a reveal exit code has no outcome.
var ErrUnknownOutcome = errors.New("unknown review outcome")

// Outcome is the result of presenting a card. The numeric values are the
// exit codes the reveal subroutine uses.
type Outcome int

const (
	Quit Outcome = iota
	Wrong
	Edit
	Skip
	Correct
	Undo
)

// OutcomeFromCode maps an exit code onto an Outcome.
func OutcomeFromCode(code int) (Outcome, error) {
	if code < int(Quit) || code > int(Undo) {
		return 0, fmt.Errorf("%w: exit code %d", ErrUnknownOutcome, code)
	}
	return Outcome(code), nil
}

// IsGrade reports whether the outcome is applied to the schedule.
func (o Outcome) IsGrade() bool {
	return o == Wrong || o == Skip || o == Correct
}

func (o Outcome) String() string {
	switch o {
	case Quit:
		return "quit"
	case Wrong:
		return "wrong"
	case Edit:
		return "edit"
	case Skip:
		return "skip"
	case Correct:
		return "correct"
	case Undo:
		return "undo"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}
