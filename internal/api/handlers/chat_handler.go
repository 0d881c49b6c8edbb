package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	middleware "github.com/MarroquinRiv/jarvis/internal/api/middlewares"
	"github.com/MarroquinRiv/jarvis/internal/core"
	"github.com/MarroquinRiv/jarvis/internal/logger"
)

const chatTopK = 5

const chatSystemPrompt = "Eres un asistente que responde únicamente con base en el contenido de los documentos del proyecto. Si la respuesta no está en los documentos, dilo claramente."

type ChatHandler struct {
	dbclient core.DbClient
	embedder core.EmbeddingProvider
	llm      core.LLMProvider
}

func NewChatHandler(dbclient core.DbClient, embedder core.EmbeddingProvider, llm core.LLMProvider) *ChatHandler {
	return &ChatHandler{dbclient: dbclient, embedder: embedder, llm: llm}
}

type chatRequest struct {
	ProjectID string `json:"project_id"`
	Query     string `json:"query"`
}

// Query embeds the question, pulls the nearest chunks of the project, and
// asks the model for an answer grounded in them.
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "No se proporcionó el ID del proyecto")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "La consulta es requerida")
		return
	}

	project, err := h.dbclient.GetProjectByID(ctx, req.ProjectID, userID)
	if err != nil {
		logger.Error("get project", err)
		writeError(w, http.StatusInternalServerError, "Error al consultar el proyecto")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "Proyecto no encontrado")
		return
	}

	vecs, err := h.embedder.EmbedTexts(ctx, []string{req.Query})
	if err != nil {
		h.writeChatError(w, err)
		return
	}
	if len(vecs) == 0 {
		writeError(w, http.StatusInternalServerError, "Error al consultar el proyecto")
		return
	}

	chunks, err := h.dbclient.SearchVectorDocuments(ctx, req.ProjectID, vecs[0], chatTopK)
	if err != nil {
		logger.Error("vector search", err)
		writeError(w, http.StatusInternalServerError, "Error al consultar el proyecto")
		return
	}

	var sb strings.Builder
	for _, ch := range chunks {
		sb.WriteString(ch.Content)
		sb.WriteString("\n---\n")
	}
	userPrompt := fmt.Sprintf("Contexto:\n%s\nPregunta: %s", sb.String(), req.Query)

	answer, err := h.llm.Generate(ctx, chatSystemPrompt, userPrompt)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":  answer,
		"sources": len(chunks),
	})
}

func (h *ChatHandler) writeChatError(w http.ResponseWriter, err error) {
	logger.Error("chat", err)
	if errors.Is(err, core.ErrQuotaExceeded) {
		writeErrorDetails(w, http.StatusServiceUnavailable,
			"Servicio de procesamiento temporalmente no disponible. Intenta de nuevo en unos minutos", err.Error())
		return
	}
	writeErrorDetails(w, http.StatusInternalServerError, "Error al consultar el proyecto", err.Error())
}
