package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
)

// EmbedderConfig represents the configuration for the embedding provider.
type EmbedderConfig struct {
	Provider   Provider
	Model      string
	BatchSize  int
	MaxRetries int
	Timeout    time.Duration
}

// EmbeddingError reports a failed embedding call with enough detail for
// diagnostics, without leaking credentials.
type EmbeddingError struct {
	Provider Provider
	Model    string
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (provider=%s, model=%s): %v", e.Provider, e.Model, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Embedder maps chunk or query text to fixed-dimension vectors through a
// remote inference call. Batches preserve input order and length.
// Transient failures are retried with exponential backoff up to
// MaxRetries; after that the call fails deterministically.
type Embedder struct {
	config EmbedderConfig
	embed  embeddings.Embedder
}

func NewEmbedderWithConfig(client embeddings.EmbedderClient, config EmbedderConfig) (*Embedder, error) {
	if config.Model == "" {
		config.Model = "text-embedding-3-small"
	}
	if config.BatchSize == 0 {
		config.BatchSize = 32
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	embed, err := embeddings.NewEmbedder(client, embeddings.WithBatchSize(config.BatchSize))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	return &Embedder{
		config: config,
		embed:  embed,
	}, nil
}

// EmbedChunks embeds a batch of chunk texts. A failure fails the whole
// batch: the caller must not build a partial knowledge base from it.
func (e *Embedder) EmbedChunks(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32
	err := e.withRetry(ctx, func(ctx context.Context) error {
		var err error
		vectors, err = e.embed.EmbedDocuments(ctx, texts)
		return err
	})
	if err != nil {
		return nil, &EmbeddingError{Provider: e.config.Provider, Model: e.config.Model, Err: err}
	}

	if len(vectors) != len(texts) {
		return nil, &EmbeddingError{
			Provider: e.config.Provider,
			Model:    e.config.Model,
			Err:      fmt.Errorf("got %d vectors for %d inputs", len(vectors), len(texts)),
		}
	}

	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := e.withRetry(ctx, func(ctx context.Context) error {
		var err error
		vector, err = e.embed.EmbedQuery(ctx, text)
		return err
	})
	if err != nil {
		return nil, &EmbeddingError{Provider: e.config.Provider, Model: e.config.Model, Err: err}
	}
	return vector, nil
}

func (e *Embedder) withRetry(ctx context.Context, op func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay(attempt)):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
		err = op(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
	}
	return err
}

// retryDelay grows exponentially, capped at 5s.
func retryDelay(attempt int) time.Duration {
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
