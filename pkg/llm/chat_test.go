package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"websage/internal/models"
	"websage/pkg/llm"
)

// fakeModel counts calls and returns a canned response.
type fakeModel struct {
	calls    int
	response string
	err      error
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	m.calls++
	return m.response, m.err
}

func testChunks() []models.Chunk {
	return []models.Chunk{
		{ID: 0, SourceURL: "https://example.com/a", Text: "Gophers live in burrows.", SequenceIndex: 0},
		{ID: 1, SourceURL: "https://example.com/b", Text: "Gophers eat roots.", SequenceIndex: 0},
	}
}

func TestAnswer(t *testing.T) {
	model := &fakeModel{response: "Gophers live in burrows and eat roots."}
	s := llm.NewSynthesizerWithConfig(model, llm.SynthesizerConfig{
		Provider: llm.ProviderOpenAI,
		Model:    "gpt-3.5-turbo",
	})

	result, err := s.Answer(context.Background(), "Where do gophers live?", testChunks())
	require.NoError(t, err)

	assert.Equal(t, "Gophers live in burrows and eat roots.", result.AnswerText)
	assert.Equal(t, 1, model.calls)

	// Every retrieved chunk is cited, in retrieval order.
	require.Len(t, result.Citations, 2)
	assert.Equal(t, "https://example.com/a", result.Citations[0].SourceURL)
	assert.Equal(t, "Gophers live in burrows.", result.Citations[0].Excerpt)
	assert.Equal(t, "https://example.com/b", result.Citations[1].SourceURL)
}

func TestAnswerTruncatesExcerpts(t *testing.T) {
	model := &fakeModel{response: "ok"}
	s := llm.NewSynthesizerWithConfig(model, llm.SynthesizerConfig{})

	long := strings.Repeat("é", 500)
	chunks := []models.Chunk{{ID: 0, SourceURL: "https://example.com", Text: long}}

	result, err := s.Answer(context.Background(), "question?", chunks)
	require.NoError(t, err)
	require.Len(t, result.Citations, 1)
	assert.Equal(t, strings.Repeat("é", 200), result.Citations[0].Excerpt)
}

func TestAnswerEmptyQuestionFailsFast(t *testing.T) {
	model := &fakeModel{response: "should not be used"}
	s := llm.NewSynthesizerWithConfig(model, llm.SynthesizerConfig{})

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := s.Answer(context.Background(), question, testChunks())
		assert.ErrorIs(t, err, llm.ErrInvalidQuestion)
	}
	assert.Equal(t, 0, model.calls)
}

func TestAnswerNoContextShortCircuits(t *testing.T) {
	model := &fakeModel{response: "should not be used"}
	s := llm.NewSynthesizerWithConfig(model, llm.SynthesizerConfig{})

	result, err := s.Answer(context.Background(), "Where do gophers live?", nil)
	require.NoError(t, err)

	assert.Equal(t, llm.NoInformationAnswer, result.AnswerText)
	assert.Empty(t, result.Citations)
	assert.Equal(t, 0, model.calls)
}

func TestAnswerCompletionError(t *testing.T) {
	model := &fakeModel{err: errors.New("rate limited")}
	s := llm.NewSynthesizerWithConfig(model, llm.SynthesizerConfig{
		Provider: llm.ProviderAzure,
		Model:    "gpt-4",
	})

	_, err := s.Answer(context.Background(), "Where do gophers live?", testChunks())
	require.Error(t, err)

	var completionErr *llm.CompletionError
	require.ErrorAs(t, err, &completionErr)
	assert.Equal(t, llm.ProviderAzure, completionErr.Provider)
	assert.Equal(t, "gpt-4", completionErr.Model)
	assert.Contains(t, completionErr.Error(), "rate limited")
}
