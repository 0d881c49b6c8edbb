package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmptyInput(t *testing.T) {
	e := NewTypeExtractor()
	_, err := e.Extract(context.Background(), nil, "doc.pdf", "application/pdf")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := NewTypeExtractor()
	_, err := e.Extract(context.Background(), []byte("data"), "slides.pptx", "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = e.Extract(context.Background(), []byte("data"), "noextension", "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractPlainText(t *testing.T) {
	e := NewTypeExtractor()
	out, err := e.Extract(context.Background(), []byte("hola mundo"), "notes.txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "hola mundo", out)

	out, err = e.Extract(context.Background(), []byte("# Título"), "README.md", "")
	require.NoError(t, err)
	assert.Equal(t, "# Título", out)
}

func TestExtractCSV(t *testing.T) {
	e := NewTypeExtractor()
	data := []byte("name,age\nAna, 30\nLuis,25\n")
	out, err := e.Extract(context.Background(), data, "people.csv", "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "name, age\nAna, 30\nLuis, 25", out)
}

func TestExtractCSVRaggedRows(t *testing.T) {
	e := NewTypeExtractor()
	data := []byte("a,b,c\nd\ne,f\n")
	out, err := e.Extract(context.Background(), data, "ragged.csv", "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "a, b, c\nd\ne, f", out)
}

func TestExtractCorruptPDF(t *testing.T) {
	e := NewTypeExtractor()
	_, err := e.Extract(context.Background(), []byte("definitely not a pdf"), "broken.pdf", "application/pdf")
	require.Error(t, err)

	var exErr *ExtractionError
	assert.True(t, errors.As(err, &exErr))
	assert.Equal(t, "pdf", exErr.Format)
}

func TestExtractCanceledContext(t *testing.T) {
	e := NewTypeExtractor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, []byte("hola"), "notes.txt", "text/plain")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractCaseInsensitiveExtension(t *testing.T) {
	e := NewTypeExtractor()
	out, err := e.Extract(context.Background(), []byte("hola"), "NOTES.TXT", "")
	require.NoError(t, err)
	assert.Equal(t, "hola", out)
}
