package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	middleware "github.com/MarroquinRiv/jarvis/internal/api/middlewares"
	"github.com/MarroquinRiv/jarvis/internal/core"
	"github.com/MarroquinRiv/jarvis/internal/models"
)

func (f *fakeDB) SearchVectorDocuments(ctx context.Context, projectID string, queryVec []float32, limit int) ([]models.VectorDocument, error) {
	var out []models.VectorDocument
	for _, d := range f.inserted {
		if d.Metadata.ProjectID == projectID {
			out = append(out, d)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeLLM struct {
	answer     string
	err        error
	lastPrompt string
}

func (f *fakeLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.lastPrompt = userPrompt
	return f.answer, f.err
}

func chatPost(body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat/query", bytes.NewBufferString(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), "user-1"))
	return req, httptest.NewRecorder()
}

func TestChatQuerySuccess(t *testing.T) {
	db := newFakeDB()
	seedProject(db)
	db.inserted = []models.VectorDocument{
		{Content: "El plazo de entrega es el 15 de mayo.", Metadata: models.ChunkMetadata{ProjectID: "proj-1"}},
	}
	llm := &fakeLLM{answer: "El 15 de mayo."}
	h := NewChatHandler(db, &fakeEmbedder{dim: 8}, llm)

	req, rec := chatPost(`{"project_id":"proj-1","query":"¿Cuál es el plazo?"}`)
	h.Query(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "El 15 de mayo.", body["answer"])
	assert.Equal(t, float64(1), body["sources"])
	assert.Contains(t, llm.lastPrompt, "plazo de entrega")
	assert.Contains(t, llm.lastPrompt, "¿Cuál es el plazo?")
}

func TestChatQueryMissingProject(t *testing.T) {
	h := NewChatHandler(newFakeDB(), &fakeEmbedder{dim: 8}, &fakeLLM{})

	req, rec := chatPost(`{"query":"hola"}`)
	h.Query(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No se proporcionó el ID del proyecto", decodeBody(t, rec)["error"])
}

func TestChatQueryBlankQuery(t *testing.T) {
	db := newFakeDB()
	seedProject(db)
	h := NewChatHandler(db, &fakeEmbedder{dim: 8}, &fakeLLM{})

	req, rec := chatPost(`{"project_id":"proj-1","query":"  "}`)
	h.Query(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatQueryProjectNotFound(t *testing.T) {
	h := NewChatHandler(newFakeDB(), &fakeEmbedder{dim: 8}, &fakeLLM{})

	req, rec := chatPost(`{"project_id":"nope","query":"hola"}`)
	h.Query(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Proyecto no encontrado", decodeBody(t, rec)["error"])
}

func TestChatQueryQuotaExceeded(t *testing.T) {
	db := newFakeDB()
	seedProject(db)
	h := NewChatHandler(db, &fakeEmbedder{err: core.ErrQuotaExceeded}, &fakeLLM{})

	req, rec := chatPost(`{"project_id":"proj-1","query":"hola"}`)
	h.Query(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["details"])
}
