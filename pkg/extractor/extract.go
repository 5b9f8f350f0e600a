package extractor

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"websage/internal/models"
	"websage/internal/types"
)

// OrchestratorConfig configures the extraction pipeline shared by both
// backends.
type OrchestratorConfig struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second
}

// Orchestrator runs extraction over a batch of URLs, falling back from
// the structured loader to the markup parser when the method is auto.
// Per-URL failures are collected and never abort the batch.
type Orchestrator struct {
	loader  Backend
	markup  Backend
	limiter *rate.Limiter
}

func NewWithConfig(config OrchestratorConfig) *Orchestrator {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}

	return &Orchestrator{
		loader:  NewLoaderBackend(config.Timeout),
		markup:  NewMarkupBackend(config.Timeout),
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

// NewWithBackends builds an orchestrator over explicit backends, without
// rate limiting. The fallback policy does not depend on backend identity.
func NewWithBackends(loader, markup Backend) *Orchestrator {
	return &Orchestrator{loader: loader, markup: markup}
}

// NormalizeURL trims whitespace and prepends https:// when the scheme is
// missing. Returns "" for blank input.
func NormalizeURL(raw string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return ""
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	return url
}

func (o *Orchestrator) Extract(ctx context.Context, urls []string, method types.Method) ([]models.RawDocument, []models.ExtractionFailure) {
	var documents []models.RawDocument
	var failures []models.ExtractionFailure

	for _, raw := range urls {
		url := NormalizeURL(raw)
		if url == "" {
			continue
		}

		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				failures = append(failures, models.ExtractionFailure{URL: url, Err: err})
				continue
			}
		}

		doc, err := o.extractOne(ctx, url, method)
		if err != nil {
			failures = append(failures, models.ExtractionFailure{URL: url, Err: err})
			continue
		}
		documents = append(documents, doc)
	}

	return documents, failures
}

func (o *Orchestrator) extractOne(ctx context.Context, url string, method types.Method) (models.RawDocument, error) {
	switch method {
	case types.MethodLoader:
		return o.loader.ExtractOne(ctx, url)
	case types.MethodMarkup:
		return o.markup.ExtractOne(ctx, url)
	default:
		doc, loaderErr := o.loader.ExtractOne(ctx, url)
		if loaderErr == nil {
			return doc, nil
		}
		doc, markupErr := o.markup.ExtractOne(ctx, url)
		if markupErr == nil {
			return doc, nil
		}
		return models.RawDocument{}, errors.Join(loaderErr, markupErr)
	}
}

var _ types.Extractor = (*Orchestrator)(nil)
