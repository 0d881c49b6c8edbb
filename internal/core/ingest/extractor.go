package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/MarroquinRiv/jarvis/internal/core"
)

// TypeExtractor dispatches to a format-specific parser by file extension.
// Supported: pdf, doc, docx, xlsx, csv, txt, md. Presentation formats are
// explicitly unsupported.
type TypeExtractor struct{}

var _ core.Extractor = (*TypeExtractor)(nil)

func NewTypeExtractor() *TypeExtractor {
	return &TypeExtractor{}
}

// Extract returns the plain text of data. It fails with ErrEmptyInput for a
// zero-length buffer, ErrUnsupportedFormat for an unknown extension, and an
// ExtractionError wrapping the parser failure otherwise. Parser panics are
// recovered and reported the same way, never crashing the process.
func (e *TypeExtractor) Extract(ctx context.Context, data []byte, fileName, mimeType string) (text string, err error) {
	if len(data) == 0 {
		return "", ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Format: ext, Err: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	switch ext {
	case "pdf":
		text, err = extractPDF(data)
	case "doc", "docx":
		text, err = extractWord(data, fileName, mimeType)
	case "xlsx":
		text, err = extractExcel(data)
	case "csv":
		text, err = extractCSV(data)
	case "txt", "md":
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: .%s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", &ExtractionError{Format: ext, Err: err}
	}
	return text, nil
}

// extractPDF concatenates the plain text of every page.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			// A single unreadable page does not fail the document.
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// extractWord pulls raw text out of doc/docx containers via docconv.
func extractWord(data []byte, fileName, mimeType string) (string, error) {
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = docconv.MimeTypeByExtension(fileName)
	}
	res, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

// extractExcel flattens each sheet to comma-separated rows, prefixed with a
// sheet-name header.
func extractExcel(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		b.WriteString(fmt.Sprintf("\n--- %s ---\n", sheet))
		for _, row := range rows {
			b.WriteString(strings.Join(row, ","))
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// extractCSV joins each record's fields with ", " and records with newlines.
func extractCSV(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var lines []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse csv: %w", err)
		}
		lines = append(lines, strings.Join(record, ", "))
	}
	return strings.Join(lines, "\n"), nil
}
