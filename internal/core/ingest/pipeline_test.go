package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarroquinRiv/jarvis/internal/core"
	"github.com/MarroquinRiv/jarvis/internal/models"
)

// fakeDB records inserted rows; the embedded interface panics on anything
// else the pipeline should never call.
type fakeDB struct {
	core.DbClient
	mu        sync.Mutex
	inserted  []models.VectorDocument
	insertErr error
}

func (f *fakeDB) InsertVectorDocuments(ctx context.Context, docs []models.VectorDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, docs...)
	return nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, fileName, mimeType string) (string, error) {
	return f.text, f.err
}

// fakeEmbedder returns one vector per text. Each vector starts with the
// rune count of its text so ordering is observable.
type fakeEmbedder struct {
	dim int
	err error
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, f.dim)
		v[0] = float32(len([]rune(t)))
		out[i] = v
	}
	return out, nil
}

func newTestPipeline(db core.DbClient, ex core.Extractor, em core.EmbeddingProvider, n *WebhookNotifier) *Pipeline {
	return NewPipeline(db, ex, em, n, Config{ChunkSize: 1000, ChunkOverlap: 200, EmbedDim: 8})
}

func testRequest() *Request {
	return &Request{
		FileName:   "informe.pdf",
		MimeType:   "application/pdf",
		Data:       []byte("%PDF-"),
		ProjectID:  "proj-1",
		UserID:     "user-1",
		UploadedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestProcessFullRun(t *testing.T) {
	db := &fakeDB{}
	ex := &fakeExtractor{text: strings.Repeat("a", 2500)}
	p := newTestPipeline(db, ex, &fakeEmbedder{dim: 8}, nil)

	req := testRequest()
	res, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Chunks)
	require.Len(t, db.inserted, 4)

	for i, doc := range db.inserted {
		assert.NotEmpty(t, doc.ID)
		assert.Equal(t, i, doc.Metadata.ChunkIndex)
		assert.Equal(t, 4, doc.Metadata.TotalChunks)
		assert.Equal(t, "informe.pdf", doc.Metadata.Source)
		assert.Equal(t, "application/pdf", doc.Metadata.MimeType)
		assert.Equal(t, "proj-1", doc.Metadata.ProjectID)
		assert.Equal(t, "user-1", doc.Metadata.UserID)
		assert.Equal(t, req.UploadedAt, doc.Metadata.UploadedAt)
		assert.Len(t, doc.Embedding, 8)
	}
	// step = 800, so the tail chunk holds the final 100 runes
	assert.Len(t, db.inserted[3].Content, 100)
}

func TestProcessEmbeddingOrder(t *testing.T) {
	db := &fakeDB{}
	ex := &fakeExtractor{text: strings.Repeat("b", 5000)}
	p := NewPipeline(db, ex, &fakeEmbedder{dim: 4}, nil, Config{
		ChunkSize:    100,
		ChunkOverlap: 10,
		EmbedDim:     4,
		BatchSize:    3,
		MaxParallel:  4,
	})

	_, err := p.Process(context.Background(), testRequest())
	require.NoError(t, err)

	for _, doc := range db.inserted {
		assert.Equal(t, float32(len([]rune(doc.Content))), doc.Embedding[0],
			"vector does not belong to its chunk")
	}
}

func TestProcessEmptyExtraction(t *testing.T) {
	db := &fakeDB{}
	p := newTestPipeline(db, &fakeExtractor{text: "  \n\t "}, &fakeEmbedder{dim: 8}, nil)

	_, err := p.Process(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrEmptyDocument)
	assert.Empty(t, db.inserted)
}

func TestProcessExtractorFailure(t *testing.T) {
	db := &fakeDB{}
	wantErr := &ExtractionError{Format: "pdf", Err: errors.New("bad xref")}
	p := newTestPipeline(db, &fakeExtractor{err: wantErr}, &fakeEmbedder{dim: 8}, nil)

	_, err := p.Process(context.Background(), testRequest())
	var exErr *ExtractionError
	assert.True(t, errors.As(err, &exErr))
	assert.Empty(t, db.inserted)
}

func TestProcessQuotaExceeded(t *testing.T) {
	db := &fakeDB{}
	ex := &fakeExtractor{text: strings.Repeat("a", 2500)}
	p := newTestPipeline(db, ex, &fakeEmbedder{err: core.ErrQuotaExceeded}, nil)

	_, err := p.Process(context.Background(), testRequest())
	assert.ErrorIs(t, err, core.ErrQuotaExceeded)
	assert.Empty(t, db.inserted, "no rows may be written when embedding fails")
}

func TestProcessDimensionMismatch(t *testing.T) {
	db := &fakeDB{}
	ex := &fakeExtractor{text: strings.Repeat("a", 2500)}
	// embedder emits dim 4, pipeline expects 8
	p := newTestPipeline(db, ex, &fakeEmbedder{dim: 4}, nil)

	_, err := p.Process(context.Background(), testRequest())
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	assert.Empty(t, db.inserted)
}

func TestProcessInsertFailure(t *testing.T) {
	db := &fakeDB{insertErr: errors.New("connection reset")}
	ex := &fakeExtractor{text: strings.Repeat("a", 2500)}
	p := newTestPipeline(db, ex, &fakeEmbedder{dim: 8}, nil)

	_, err := p.Process(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestProcessWebhookFailureIsIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	db := &fakeDB{}
	ex := &fakeExtractor{text: strings.Repeat("a", 2500)}
	p := newTestPipeline(db, ex, &fakeEmbedder{dim: 8}, NewWebhookNotifier(srv.URL))

	res, err := p.Process(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Chunks)
	assert.Len(t, db.inserted, 4)
}

func TestProcessWebhookReceivesFile(t *testing.T) {
	var gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		gotFile = header.Filename
	}))
	defer srv.Close()

	db := &fakeDB{}
	ex := &fakeExtractor{text: strings.Repeat("a", 2500)}
	p := newTestPipeline(db, ex, &fakeEmbedder{dim: 8}, NewWebhookNotifier(srv.URL))

	_, err := p.Process(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "informe.pdf", gotFile)
}

func TestNewWebhookNotifierEmptyURL(t *testing.T) {
	assert.Nil(t, NewWebhookNotifier(""))
}

func TestBuildChunkMetadata(t *testing.T) {
	now := time.Now()
	m := BuildChunkMetadata("a.pdf", 2, 5, "p1", "u1", "application/pdf", now)
	assert.Equal(t, "a.pdf", m.Source)
	assert.Equal(t, 2, m.ChunkIndex)
	assert.Equal(t, 5, m.TotalChunks)
	assert.Equal(t, "p1", m.ProjectID)
	assert.Equal(t, "u1", m.UserID)
	assert.Equal(t, now, m.UploadedAt)
}
