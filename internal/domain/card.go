package domain

import (
	"errors"
	"strings"
)

// Chunk is the text block of one flashcard: a question line followed by its
// answer lines, with trailing blank lines already trimmed.
type Chunk struct {
	Text string
}

// QuestionLine returns the first line of the chunk.
func (c Chunk) QuestionLine() string {
	line, _, _ := strings.Cut(c.Text, "\n")
	return line
}

// Card pairs a chunk with the identifier it is scheduled under.
type Card struct {
	ID    string
	Chunk Chunk
}

// Question is a shorthand for the card's question line.
func (c Card) Question() string {
	return c.Chunk.QuestionLine()
}

// ErrNotFound is returned when a deck file or directory does not exist.
var ErrNotFound = errors.New("not found")
