package types

import (
	"context"
	"fmt"

	"websage/internal/models"
)

// Method selects which extraction backend(s) to try per URL.
type Method string

const (
	MethodLoader Method = "loader"
	MethodMarkup Method = "markup"
	MethodAuto   Method = "auto"
)

// ParseMethod maps a configuration string to a Method. An empty string
// selects the auto (try-both) behavior.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodLoader, MethodMarkup, MethodAuto:
		return Method(s), nil
	case "":
		return MethodAuto, nil
	}
	return "", fmt.Errorf("unknown extraction method %q (want loader, markup or auto)", s)
}

// Core interfaces
type Extractor interface {
	Extract(ctx context.Context, urls []string, method Method) ([]models.RawDocument, []models.ExtractionFailure)
}

// Embedder maps text to fixed-dimension vectors. EmbedChunks preserves
// input order and length.
type Embedder interface {
	EmbedChunks(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Synthesizer produces an answer grounded in the supplied chunks.
type Synthesizer interface {
	Answer(ctx context.Context, question string, chunks []models.Chunk) (models.AnswerResult, error)
}
