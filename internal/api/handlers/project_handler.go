package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	middleware "github.com/MarroquinRiv/jarvis/internal/api/middlewares"
	"github.com/MarroquinRiv/jarvis/internal/config"
	"github.com/MarroquinRiv/jarvis/internal/core"
	"github.com/MarroquinRiv/jarvis/internal/logger"
	"github.com/MarroquinRiv/jarvis/internal/models"
)

type ProjectHandler struct {
	dbclient     core.DbClient
	objectclient core.ObjectClient
	cfg          *config.Config
}

func NewProjectHandler(dbclient core.DbClient, objectclient core.ObjectClient, cfg *config.Config) *ProjectHandler {
	return &ProjectHandler{dbclient: dbclient, objectclient: objectclient, cfg: cfg}
}

type projectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "El nombre del proyecto es requerido")
		return
	}

	now := time.Now()
	p := &models.Project{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      strings.TrimSpace(*req.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		p.Description = *req.Description
	}

	if err := h.dbclient.CreateProject(r.Context(), p); err != nil {
		logger.Error("create project", err)
		writeError(w, http.StatusInternalServerError, "Error al crear el proyecto")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	projects, err := h.dbclient.ListProjectsByUser(r.Context(), userID)
	if err != nil {
		logger.Error("list projects", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener los proyectos")
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	id := chi.URLParam(r, "id")
	p, err := h.dbclient.GetProjectByID(r.Context(), id, userID)
	if err != nil {
		logger.Error("get project", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener el proyecto")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Proyecto no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	if req.Name == nil && req.Description == nil {
		writeError(w, http.StatusBadRequest, "Debes proporcionar al menos un campo para actualizar")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "El nombre del proyecto es requerido")
		return
	}

	id := chi.URLParam(r, "id")
	p, err := h.dbclient.UpdateProject(r.Context(), id, userID, req.Name, req.Description)
	if err != nil {
		logger.Error("update project", err)
		writeError(w, http.StatusInternalServerError, "Error al actualizar el proyecto")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Proyecto no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject removes the stored objects first, then the rows. Object
// deletions are best-effort; a missing S3 object must not block the delete.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	id := chi.URLParam(r, "id")
	p, err := h.dbclient.GetProjectByID(r.Context(), id, userID)
	if err != nil {
		logger.Error("delete project", err)
		writeError(w, http.StatusInternalServerError, "Error al eliminar el proyecto")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Proyecto no encontrado")
		return
	}

	files, err := h.dbclient.ListFilesByProject(r.Context(), id, userID)
	if err != nil {
		logger.Error("list project files", err)
		writeError(w, http.StatusInternalServerError, "Error al eliminar el proyecto")
		return
	}
	for _, f := range files {
		if err := h.objectclient.DeleteFile(r.Context(), h.cfg.BucketName, f.FilePath); err != nil {
			logger.Errorf("delete object %s: %v", f.FilePath, err)
		}
	}

	if err := h.dbclient.DeleteProject(r.Context(), id, userID); err != nil {
		logger.Error("delete project", err)
		writeError(w, http.StatusInternalServerError, "Error al eliminar el proyecto")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ProjectHandler) ListProjectFiles(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	id := chi.URLParam(r, "id")
	p, err := h.dbclient.GetProjectByID(r.Context(), id, userID)
	if err != nil {
		logger.Error("get project", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener los archivos")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Proyecto no encontrado")
		return
	}

	files, err := h.dbclient.ListFilesByProject(r.Context(), id, userID)
	if err != nil {
		logger.Error("list project files", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener los archivos")
		return
	}
	if files == nil {
		files = []models.ProjectFile{}
	}
	writeJSON(w, http.StatusOK, files)
}
