package processor

import (
	"fmt"

	"websage/internal/models"
)

// ProcessorConfig controls how documents are split. The chunk unit is
// runes: ChunkSize runes per window, each window starting
// ChunkSize-ChunkOverlap runes after the previous one.
type ProcessorConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// Processor splits raw documents into overlapping fixed-size chunks.
// Chunk IDs are monotonic across every document processed by one
// Processor, so one Processor belongs to one session.
type Processor struct {
	config ProcessorConfig
	nextID int
}

func NewWithConfig(config ProcessorConfig) (*Processor, error) {
	// Overlap defaults only alongside size: an explicit zero overlap is
	// a valid configuration and must survive.
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
		if config.ChunkOverlap == 0 {
			config.ChunkOverlap = 200
		}
	}

	if config.ChunkSize < 1 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", config.ChunkSize)
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		return nil, fmt.Errorf("chunk overlap must satisfy 0 <= overlap < size, got overlap=%d size=%d",
			config.ChunkOverlap, config.ChunkSize)
	}

	return &Processor{config: config}, nil
}

// Process splits each document's text into chunks. A text shorter than
// one window yields exactly one chunk holding the whole text; the final
// window may be shorter than the chunk size.
func (p *Processor) Process(docs []models.RawDocument) ([]models.Chunk, error) {
	var chunks []models.Chunk

	for _, doc := range docs {
		runes := []rune(doc.Text)
		if len(runes) == 0 {
			continue
		}

		step := p.config.ChunkSize - p.config.ChunkOverlap
		seq := 0

		for start := 0; ; start += step {
			end := start + p.config.ChunkSize
			if end > len(runes) {
				end = len(runes)
			}

			chunks = append(chunks, models.Chunk{
				ID:            p.nextID,
				SourceURL:     doc.SourceURL,
				Text:          string(runes[start:end]),
				SequenceIndex: seq,
			})
			p.nextID++
			seq++

			if end == len(runes) {
				break
			}
		}
	}

	return chunks, nil
}
