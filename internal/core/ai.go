package core

import (
	"context"
	"errors"
)

// Errors an EmbeddingProvider must surface so callers can map them to
// distinct failure modes. Quota errors short-circuit a whole ingestion run;
// a dimension mismatch aborts persistence because heterogeneous vectors
// corrupt the similarity index.
var (
	ErrQuotaExceeded     = errors.New("embedding provider quota exceeded")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// EmbeddingProvider turns text chunks into fixed-dimension vectors.
// The returned slice has the same length and order as the input, and every
// vector has identical length; violations return ErrDimensionMismatch.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// Extractor produces plain text from a raw file buffer, choosing a parsing
// strategy from the file name extension and declared MIME type.
type Extractor interface {
	Extract(ctx context.Context, data []byte, fileName, mimeType string) (string, error)
}
