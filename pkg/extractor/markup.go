package extractor

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"websage/internal/models"
)

// MarkupBackend extracts page text by parsing the markup directly with
// goquery and stripping boilerplate elements.
type MarkupBackend struct {
	client *http.Client
}

func NewMarkupBackend(timeout time.Duration) *MarkupBackend {
	return &MarkupBackend{client: newHTTPClient(timeout)}
}

func (b *MarkupBackend) Method() models.ExtractionMethod {
	return models.MarkupParser
}

func (b *MarkupBackend) ExtractOne(ctx context.Context, url string) (models.RawDocument, error) {
	resp, err := fetch(ctx, b.client, url)
	if err != nil {
		return models.RawDocument{}, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return models.RawDocument{}, &ParseError{URL: url, Reason: "malformed HTML", Err: err}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, header, footer, nav").Remove()

	text := cleanContent(doc.Find("body").Text())
	if utf8.RuneCountInString(text) < minContentRunes {
		return models.RawDocument{}, &ParseError{URL: url, Reason: "content was empty or too short"}
	}

	return models.RawDocument{
		SourceURL: url,
		Title:     title,
		Text:      text,
		Method:    models.MarkupParser,
	}, nil
}
