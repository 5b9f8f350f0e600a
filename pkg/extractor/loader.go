package extractor

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tmc/langchaingo/documentloaders"

	"websage/internal/models"
)

// LoaderBackend extracts page text with the langchaingo HTML document
// loader.
type LoaderBackend struct {
	client *http.Client
}

func NewLoaderBackend(timeout time.Duration) *LoaderBackend {
	return &LoaderBackend{client: newHTTPClient(timeout)}
}

func (b *LoaderBackend) Method() models.ExtractionMethod {
	return models.StructuredLoader
}

func (b *LoaderBackend) ExtractOne(ctx context.Context, url string) (models.RawDocument, error) {
	resp, err := fetch(ctx, b.client, url)
	if err != nil {
		return models.RawDocument{}, err
	}
	defer resp.Body.Close()

	// The body is read twice: once by the loader for content, once for
	// the title, which the loader does not surface.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.RawDocument{}, &FetchError{URL: url, Err: err}
	}

	docs, err := documentloaders.NewHTML(bytes.NewReader(body)).Load(ctx)
	if err != nil {
		return models.RawDocument{}, &ParseError{URL: url, Reason: "malformed HTML", Err: err}
	}

	var parts []string
	for _, doc := range docs {
		if content := strings.TrimSpace(doc.PageContent); content != "" {
			parts = append(parts, content)
		}
	}

	text := cleanContent(strings.Join(parts, "\n"))
	if utf8.RuneCountInString(text) < minContentRunes {
		return models.RawDocument{}, &ParseError{URL: url, Reason: "content was empty or too short"}
	}

	return models.RawDocument{
		SourceURL: url,
		Title:     pageTitle(bytes.NewReader(body)),
		Text:      text,
		Method:    models.StructuredLoader,
	}, nil
}
