package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"websage/internal/models"
)

// ErrInvalidQuestion rejects empty or whitespace-only questions before
// any network call.
var ErrInvalidQuestion = errors.New("question is empty")

// NoInformationAnswer is returned without calling the backend when
// retrieval produced no context.
const NoInformationAnswer = "No information available: the knowledge base contains no content for this question."

const systemTemplate = `You are a helpful assistant that answers questions based ONLY on the provided context.
If the answer cannot be found in the context, say "I don't have enough information to answer this question based on the provided content."
Do not use any prior knowledge or information not contained in the context.`

// excerptRunes bounds the citation excerpt length.
const excerptRunes = 200

// CompletionError reports a failed language-model call. It fails the
// question, not the session.
type CompletionError struct {
	Provider Provider
	Model    string
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed (provider=%s, model=%s): %v", e.Provider, e.Model, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// SynthesizerConfig represents the configuration for the answer
// synthesizer.
type SynthesizerConfig struct {
	Provider    Provider
	Model       string
	MaxTokens   int
	Temperature float64
}

// Synthesizer turns a question plus retrieved chunks into a grounded
// answer with citations.
type Synthesizer struct {
	config SynthesizerConfig
	llm    llms.Model
}

func NewSynthesizerWithConfig(model llms.Model, config SynthesizerConfig) *Synthesizer {
	if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}

	return &Synthesizer{
		config: config,
		llm:    model,
	}
}

// Answer generates a response constrained to the supplied chunks.
//
// Citation policy: every supplied chunk is cited, in the order given.
// Matching model prose against chunk text is not deterministic, so the
// full retrieved set is the contract.
func (s *Synthesizer) Answer(ctx context.Context, question string, chunks []models.Chunk) (models.AnswerResult, error) {
	if strings.TrimSpace(question) == "" {
		return models.AnswerResult{}, ErrInvalidQuestion
	}

	if len(chunks) == 0 {
		return models.AnswerResult{AnswerText: NoInformationAnswer}, nil
	}

	var contextBuilder strings.Builder
	for _, chunk := range chunks {
		fmt.Fprintf(&contextBuilder, "Source: %s\n%s\n\n", chunk.SourceURL, chunk.Text)
	}

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemTemplate),
		llms.TextParts(schema.ChatMessageTypeHuman,
			fmt.Sprintf("Context:\n%s\nQuestion: %s", contextBuilder.String(), question)),
	}

	response, err := s.llm.GenerateContent(ctx, content,
		llms.WithTemperature(s.config.Temperature),
		llms.WithMaxTokens(s.config.MaxTokens),
	)
	if err != nil {
		return models.AnswerResult{}, &CompletionError{Provider: s.config.Provider, Model: s.config.Model, Err: err}
	}
	if response == nil || len(response.Choices) == 0 {
		return models.AnswerResult{}, &CompletionError{
			Provider: s.config.Provider,
			Model:    s.config.Model,
			Err:      errors.New("no choices returned"),
		}
	}

	return models.AnswerResult{
		AnswerText: response.Choices[0].Content,
		Citations:  citations(chunks),
	}, nil
}

func citations(chunks []models.Chunk) []models.Citation {
	cited := make([]models.Citation, 0, len(chunks))
	for _, chunk := range chunks {
		cited = append(cited, models.Citation{
			SourceURL: chunk.SourceURL,
			Excerpt:   excerpt(chunk.Text),
		})
	}
	return cited
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return string(runes[:excerptRunes])
}
