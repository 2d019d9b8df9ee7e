package session

import (
	"github.com/conorfennell/drill/internal/domain"
	"github.com/conorfennell/drill/internal/schedule"
)

// queue is the double-ended work queue of one selection pass.
type queue struct {
	cards []domain.Card
}

func newQueue(cards []domain.Card) *queue {
	return &queue{cards: append([]domain.Card(nil), cards...)}
}

func (q *queue) Len() int { return len(q.cards) }

func (q *queue) PopFront() domain.Card {
	c := q.cards[0]
	q.cards = q.cards[1:]
	return c
}

func (q *queue) PushFront(c domain.Card) {
	q.cards = append([]domain.Card{c}, q.cards...)
}

// record holds what is needed to reverse one graded review: the card and
// its schedule entry before grading, nil if it had none.
type record struct {
	card  domain.Card
	prior *schedule.Entry
}

// history is the undo stack. It only grows on graded outcomes and only
// shrinks on undo.
type history struct {
	records []record
}

func (h *history) Len() int { return len(h.records) }

func (h *history) Push(r record) {
	h.records = append(h.records, r)
}

func (h *history) Pop() (record, bool) {
	if len(h.records) == 0 {
		return record{}, false
	}
	r := h.records[len(h.records)-1]
	h.records = h.records[:len(h.records)-1]
	return r, true
}
