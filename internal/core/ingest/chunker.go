package ingest

import (
	"fmt"
	"strings"
	"unicode"
)

// SplitText divides text into overlapping fixed-length windows. Each chunk is
// size runes long (the last one may be shorter) and shares overlap runes with
// its predecessor, so for non-empty text the chunk count is
// ceil(len / (size-overlap)).
//
// overlap >= size would keep the window from advancing, so it is rejected up
// front instead of looping forever.
func SplitText(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunkConfig, size, overlap)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}

// CleanText normalizes extracted text before chunking: control runes are
// dropped, runs of whitespace collapse to a single space or newline, and the
// result is trimmed. Whitespace-only input cleans to the empty string.
func CleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingNewline := false
	pendingSpace := false
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r':
			pendingNewline = true
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsControl(r) || r == '�':
			// Skip null/control bytes that PDF parsers sometimes leak.
		default:
			if b.Len() > 0 {
				if pendingNewline {
					b.WriteByte('\n')
				} else if pendingSpace {
					b.WriteByte(' ')
				}
			}
			pendingNewline = false
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
