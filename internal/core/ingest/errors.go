package ingest

import (
	"errors"
	"fmt"
)

// Failure modes of the ingestion pipeline. Handlers translate these into
// HTTP statuses; everything else surfaces as a generic processing error.
var (
	// ErrUnsupportedFormat: the file extension has no extraction strategy.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyInput: the uploaded buffer has zero length.
	ErrEmptyInput = errors.New("empty file buffer")

	// ErrEmptyDocument: extraction produced no usable text at all.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrInsufficientText: some text survived cleaning but not enough to
	// produce a single chunk worth processing.
	ErrInsufficientText = errors.New("document text too short to process")

	// ErrInvalidChunkConfig: overlap >= size would stall the sliding window.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")
)

// ExtractionError wraps a format-specific parser failure. Parser errors and
// panics are always converted into this type so a malformed file can never
// take down the process.
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
