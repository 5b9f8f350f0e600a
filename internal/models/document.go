package models

// ExtractionMethod identifies which backend produced a RawDocument.
type ExtractionMethod string

const (
	StructuredLoader ExtractionMethod = "structured-loader"
	MarkupParser     ExtractionMethod = "markup-parser"
)

// RawDocument holds the text extracted from one web page. It is consumed
// by the chunker and discarded afterwards.
type RawDocument struct {
	SourceURL string
	Title     string
	Text      string
	Method    ExtractionMethod
}

// Chunk is the atomic unit of retrieval: a bounded contiguous slice of
// one document's text. IDs are unique and monotonic within a session;
// SequenceIndex restarts at 0 per source document.
type Chunk struct {
	ID            int
	SourceURL     string
	Text          string
	SequenceIndex int
}

// EmbeddedChunk pairs a chunk with its embedding vector. All vectors in
// one session have the same length.
type EmbeddedChunk struct {
	Chunk  Chunk
	Vector []float32
}

// Citation points back at the source excerpt an answer drew from.
type Citation struct {
	SourceURL string
	Excerpt   string
}

// AnswerResult is the outcome of a single question.
type AnswerResult struct {
	AnswerText string
	Citations  []Citation
}

// ExtractionFailure records a URL that could not be ingested.
type ExtractionFailure struct {
	URL string
	Err error
}
