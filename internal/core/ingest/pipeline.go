package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MarroquinRiv/jarvis/internal/core"
	"github.com/MarroquinRiv/jarvis/internal/logger"
	"github.com/MarroquinRiv/jarvis/internal/models"
)

// Config tunes the pipeline.
//
// ChunkSize/ChunkOverlap: sliding-window parameters in runes.
// EmbedDim:               expected vector length (0 = accept the model default).
// BatchSize:              chunks per embedding request.
// MaxParallel:            concurrent embedding batches in flight.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	EmbedDim     int
	BatchSize    int
	MaxParallel  int
}

// Request is everything one ingestion run needs; the raw bytes are discarded
// when Process returns.
type Request struct {
	FileName   string
	MimeType   string
	Data       []byte
	ProjectID  string
	UserID     string
	UploadedAt time.Time
}

type Result struct {
	Chunks int
}

// Pipeline runs one upload through extract → clean → chunk → embed → persist
// → notify. Each run is self-contained: no state survives between calls.
type Pipeline struct {
	db        core.DbClient
	extractor core.Extractor
	embedder  core.EmbeddingProvider
	notifier  *WebhookNotifier
	cfg       Config
}

func NewPipeline(db core.DbClient, extractor core.Extractor, embedder core.EmbeddingProvider, notifier *WebhookNotifier, cfg Config) *Pipeline {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap == 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	return &Pipeline{db: db, extractor: extractor, embedder: embedder, notifier: notifier, cfg: cfg}
}

// Process runs the whole pipeline for a single document. Any stage failure
// aborts the run with a typed error; a webhook failure after persistence is
// logged and ignored. Chunk rows written before a mid-run insert failure are
// left in place.
func (p *Pipeline) Process(ctx context.Context, req *Request) (*Result, error) {
	text, err := p.extractor.Extract(ctx, req.Data, req.FileName, req.MimeType)
	if err != nil {
		return nil, err
	}

	cleaned := CleanText(text)
	if strings.TrimSpace(cleaned) == "" {
		return nil, ErrEmptyDocument
	}

	chunks, err := SplitText(cleaned, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrInsufficientText
	}
	logger.Infow("document chunked", "file", req.FileName, "chars", len(cleaned), "chunks", len(chunks))

	vecs, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if err := checkDimensions(vecs, p.cfg.EmbedDim); err != nil {
		return nil, err
	}

	now := req.UploadedAt
	if now.IsZero() {
		now = time.Now()
	}

	docs := make([]models.VectorDocument, len(chunks))
	for i, c := range chunks {
		docs[i] = models.VectorDocument{
			ID:        uuid.NewString(),
			Content:   c,
			Metadata:  BuildChunkMetadata(req.FileName, i, len(chunks), req.ProjectID, req.UserID, req.MimeType, now),
			Embedding: vecs[i],
			CreatedAt: now,
		}
	}
	if err := p.db.InsertVectorDocuments(ctx, docs); err != nil {
		return nil, err
	}
	logger.Infow("document ingested", "file", req.FileName, "chunks", len(docs))

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, req.FileName, req.Data); err != nil {
			// Best-effort side channel: the run already succeeded.
			logger.Error("webhook notify failed", err)
		}
	}

	return &Result{Chunks: len(chunks)}, nil
}

// embedChunks fans batches out under an errgroup, writing each batch's
// vectors back into its slot so output order always matches chunk order.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	vecs := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxParallel)

	for start := 0; start < len(chunks); start += p.cfg.BatchSize {
		start := start
		end := start + p.cfg.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		g.Go(func() error {
			out, err := p.embedder.EmbedTexts(gctx, chunks[start:end])
			if err != nil {
				return fmt.Errorf("embed batch at %d: %w", start, err)
			}
			if len(out) != end-start {
				return fmt.Errorf("embed batch at %d: got %d vectors, want %d", start, len(out), end-start)
			}
			copy(vecs[start:end], out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vecs, nil
}

// checkDimensions enforces the homogeneous-dimension invariant across a run.
// want == 0 takes the first vector's length as the reference.
func checkDimensions(vecs [][]float32, want int) error {
	if len(vecs) == 0 {
		return nil
	}
	if want == 0 {
		want = len(vecs[0])
	}
	for i, v := range vecs {
		if len(v) != want {
			return fmt.Errorf("%w: vector %d has %d values, want %d", core.ErrDimensionMismatch, i, len(v), want)
		}
	}
	return nil
}
