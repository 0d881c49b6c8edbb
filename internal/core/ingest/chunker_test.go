package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextOffsets(t *testing.T) {
	text := strings.Repeat("a", 2500)

	chunks, err := SplitText(text, 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	// step = 800, so chunks start at 0, 800, 1600, 2400
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	assert.Len(t, chunks[2], 900)
	assert.Len(t, chunks[3], 100)
}

func TestSplitTextNeighborOverlap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 250; i++ {
		b.WriteString("0123456789")
	}
	text := b.String()

	chunks, err := SplitText(text, 1000, 200)
	require.NoError(t, err)
	require.True(t, len(chunks) >= 2)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		// The final chunk can be shorter than the overlap itself.
		n := 200
		if len(cur) < n {
			n = len(cur)
		}
		tail := string(prev[len(prev)-n:])
		assert.True(t, strings.HasPrefix(chunks[i], tail), "chunk %d does not start with the previous tail", i)
	}
}

func TestSplitTextCountIsCeil(t *testing.T) {
	cases := []struct {
		length int
		want   int
	}{
		{1, 1},
		{800, 1},
		{801, 2},
		{1000, 2}, // ceil(1000/800)
		{1600, 2},
		{1601, 3},
		{2500, 4},
	}
	for _, tc := range cases {
		chunks, err := SplitText(strings.Repeat("x", tc.length), 1000, 200)
		require.NoError(t, err)
		assert.Len(t, chunks, tc.want, "length %d", tc.length)
	}
}

func TestSplitTextShortInput(t *testing.T) {
	chunks, err := SplitText("hola", 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hola", chunks[0])
}

func TestSplitTextEmpty(t *testing.T) {
	chunks, err := SplitText("", 1000, 200)
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestSplitTextRuneBoundaries(t *testing.T) {
	text := strings.Repeat("ñ", 30)
	chunks, err := SplitText(text, 10, 2)
	require.NoError(t, err)
	for _, c := range chunks {
		for _, r := range c {
			assert.Equal(t, 'ñ', r)
		}
	}
}

func TestSplitTextInvalidConfig(t *testing.T) {
	_, err := SplitText("text", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidChunkConfig)

	_, err = SplitText("text", 100, 100)
	assert.ErrorIs(t, err, ErrInvalidChunkConfig)

	_, err = SplitText("text", 100, 150)
	assert.ErrorIs(t, err, ErrInvalidChunkConfig)

	_, err = SplitText("text", 100, -1)
	assert.ErrorIs(t, err, ErrInvalidChunkConfig)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "", CleanText("   \t\n  "))
	assert.Equal(t, "hola mundo", CleanText("  hola   \t mundo  "))
	assert.Equal(t, "uno\ndos", CleanText("uno\r\n\r\ndos"))
	assert.Equal(t, "ab", CleanText("a\x00\x01b"))
	assert.Equal(t, "ab", CleanText("a�b"))
}
