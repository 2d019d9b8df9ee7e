package knol

import (
	"crypto/sha256"
	"fmt"

	"github.com/conorfennell/drill/internal/domain"
)

// Identify returns the SHA-256 hash of text as a hex string. The text is
// hashed verbatim; identical text always collapses to the same identifier.
func Identify(text string) string {
	hashBytes := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", hashBytes)
}

// QuestionID identifies a chunk by its question line. Scheduling is keyed
// on this identifier, so editing an answer keeps the card's history.
func QuestionID(c domain.Chunk) string {
	return Identify(c.QuestionLine())
}

// ChunkID identifies a chunk by its whole text, question and answer.
func ChunkID(c domain.Chunk) string {
	return Identify(c.Text)
}

// Cards pairs every chunk with its question identifier, keeping order.
func Cards(chunks []domain.Chunk) []domain.Card {
	cards := make([]domain.Card, 0, len(chunks))
	for _, c := range chunks {
		cards = append(cards, domain.Card{ID: QuestionID(c), Chunk: c})
	}
	return cards
}
