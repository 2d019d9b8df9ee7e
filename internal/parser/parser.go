package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/drill/internal/domain"
)

// QuestionMarker starts a new chunk when it begins a line.
const QuestionMarker = "?"

const maxLineSize = 1024 * 1024

// ParseFile reads a file from the given path and splits it into chunks.
func ParseFile(path string) ([]domain.Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse splits the text from r into chunks. Each chunk begins at a line
// starting with QuestionMarker and runs until the next such line or EOF,
// minus trailing blank lines. Text before the first question is ignored.
func Parse(r io.Reader) ([]domain.Chunk, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var chunks []domain.Chunk
	var current []string

	finishChunk := func() {
		for len(current) > 0 && current[len(current)-1] == "" {
			current = current[:len(current)-1]
		}
		if len(current) > 0 {
			chunks = append(chunks, domain.Chunk{Text: strings.Join(current, "\n")})
		}
		current = nil
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, QuestionMarker) {
			finishChunk()
			current = []string{line}
		} else if current != nil {
			current = append(current, line)
		}
	}

	finishChunk() // Finish the very last chunk in the file

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return chunks, nil
}
