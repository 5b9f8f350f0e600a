// Package session owns the ingest-then-ask lifecycle. A session holds
// at most one knowledge base; ingesting a new URL set replaces it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"websage/internal/models"
	"websage/internal/types"
	"websage/pkg/index"
	"websage/pkg/llm"
	"websage/pkg/processor"
)

// ErrNoKnowledgeBase is returned by Ask before any content has been
// successfully ingested.
var ErrNoKnowledgeBase = errors.New("no knowledge base: ingest at least one URL first")

// IngestStats summarizes a successful ingest.
type IngestStats struct {
	Documents int
	Chunks    int
}

// Session wires extraction, chunking, embedding, retrieval and answer
// synthesis around a single in-memory knowledge base.
type Session struct {
	extractor   types.Extractor
	processor   *processor.Processor
	embedder    types.Embedder
	synthesizer types.Synthesizer
	topK        int

	mu sync.RWMutex
	kb *index.Index
}

func New(extractor types.Extractor, proc *processor.Processor, embedder types.Embedder, synthesizer types.Synthesizer, topK int) *Session {
	if topK <= 0 {
		topK = 4
	}

	return &Session{
		extractor:   extractor,
		processor:   proc,
		embedder:    embedder,
		synthesizer: synthesizer,
		topK:        topK,
	}
}

// Ingest builds a fresh knowledge base from the given URLs. The previous
// knowledge base is discarded up front: a failed ingest leaves the
// session empty rather than answering from stale content. Per-URL
// extraction failures are reported but do not abort the batch; the
// ingest fails only when no URL produced content or a pipeline stage
// failed outright.
func (s *Session) Ingest(ctx context.Context, urls []string, method types.Method) (IngestStats, []models.ExtractionFailure, error) {
	s.mu.Lock()
	s.kb = nil
	s.mu.Unlock()

	docs, failures := s.extractor.Extract(ctx, urls, method)
	if len(docs) == 0 {
		return IngestStats{}, failures, fmt.Errorf("no content extracted from %d URL(s)", len(urls))
	}

	chunks, err := s.processor.Process(docs)
	if err != nil {
		return IngestStats{}, failures, fmt.Errorf("chunking content: %w", err)
	}
	if len(chunks) == 0 {
		return IngestStats{}, failures, errors.New("extracted content produced no chunks")
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedChunks(ctx, texts)
	if err != nil {
		return IngestStats{}, failures, fmt.Errorf("embedding chunks: %w", err)
	}

	embedded := make([]models.EmbeddedChunk, len(chunks))
	for i, chunk := range chunks {
		embedded[i] = models.EmbeddedChunk{Chunk: chunk, Vector: vectors[i]}
	}

	kb, err := index.Build(embedded)
	if err != nil {
		return IngestStats{}, failures, fmt.Errorf("indexing chunks: %w", err)
	}

	s.mu.Lock()
	s.kb = kb
	s.mu.Unlock()

	return IngestStats{Documents: len(docs), Chunks: len(chunks)}, failures, nil
}

// Ready reports whether a knowledge base is available for questions.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kb != nil
}

// Ask answers a question from the current knowledge base. The question
// is validated and the knowledge base checked before any network call.
func (s *Session) Ask(ctx context.Context, question string) (models.AnswerResult, error) {
	if strings.TrimSpace(question) == "" {
		return models.AnswerResult{}, llm.ErrInvalidQuestion
	}

	s.mu.RLock()
	kb := s.kb
	s.mu.RUnlock()
	if kb == nil {
		return models.AnswerResult{}, ErrNoKnowledgeBase
	}

	qvec, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return models.AnswerResult{}, fmt.Errorf("embedding question: %w", err)
	}

	results, err := kb.Query(qvec, s.topK)
	if err != nil {
		return models.AnswerResult{}, fmt.Errorf("querying knowledge base: %w", err)
	}

	chunks := make([]models.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}

	return s.synthesizer.Answer(ctx, question, chunks)
}
