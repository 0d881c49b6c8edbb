package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	middleware "github.com/MarroquinRiv/jarvis/internal/api/middlewares"
	"github.com/MarroquinRiv/jarvis/internal/config"
	"github.com/MarroquinRiv/jarvis/internal/core"
	"github.com/MarroquinRiv/jarvis/internal/core/ingest"
	"github.com/MarroquinRiv/jarvis/internal/logger"
	"github.com/MarroquinRiv/jarvis/internal/models"
)

const maxUploadBytes = 50 << 20

// Formats accepted for ingestion. Anything else is rejected before any
// byte leaves the request.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

type FileHandler struct {
	dbclient     core.DbClient
	objectclient core.ObjectClient
	pipeline     *ingest.Pipeline
	cfg          *config.Config
}

func NewFileHandler(dbclient core.DbClient, objectclient core.ObjectClient, pipeline *ingest.Pipeline, cfg *config.Config) *FileHandler {
	return &FileHandler{dbclient: dbclient, objectclient: objectclient, pipeline: pipeline, cfg: cfg}
}

// Upload ingests one document: validate, back the raw file up to S3, record
// it, then run the extract/chunk/embed/persist pipeline synchronously.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No se proporcionó ningún archivo")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No se proporcionó ningún archivo")
		return
	}
	defer file.Close()

	projectID := r.FormValue("projectId")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "No se proporcionó el ID del proyecto")
		return
	}

	project, err := h.dbclient.GetProjectByID(r.Context(), projectID, userID)
	if err != nil {
		logger.Error("get project", err)
		writeError(w, http.StatusInternalServerError, "Error al procesar el documento")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "Proyecto no encontrado")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedMimeTypes[contentType] {
		writeError(w, http.StatusBadRequest, "Tipo de archivo no permitido. Solo se permiten PDF, DOC y DOCX")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No se proporcionó ningún archivo")
		return
	}

	fileName := filepath.Base(header.Filename)
	now := time.Now()

	// Raw backup in S3. The pipeline works from the in-memory bytes, so a
	// storage hiccup only costs the backup copy.
	s3Key := fmt.Sprintf("%s/%s/%s", userID, projectID, fileName)
	if _, err := h.objectclient.UploadFile(r.Context(), h.cfg.BucketName, s3Key, data, contentType); err != nil {
		logger.Errorf("s3 backup for %s: %v", fileName, err)
	}

	record := &models.ProjectFile{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    userID,
		FileName:  fileName,
		FilePath:  s3Key,
		FileSize:  int64(len(data)),
		MimeType:  contentType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.dbclient.CreateProjectFile(r.Context(), record); err != nil {
		logger.Error("create project file", err)
		writeErrorDetails(w, http.StatusInternalServerError, "Error al procesar el documento", err.Error())
		return
	}

	result, err := h.pipeline.Process(r.Context(), &ingest.Request{
		FileName:   fileName,
		MimeType:   contentType,
		Data:       data,
		ProjectID:  projectID,
		UserID:     userID,
		UploadedAt: now,
	})
	if err != nil {
		h.writeIngestError(w, fileName, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"fileName": fileName,
		"chunks":   result.Chunks,
		"message":  fmt.Sprintf("Documento procesado exitosamente en %d fragmentos", result.Chunks),
	})
}

// Replace swaps the stored object and record of an existing file, then
// re-ingests the new content. Old chunk rows are retained.
func (h *FileHandler) Replace(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	fileID := chi.URLParam(r, "id")
	existing, err := h.dbclient.GetProjectFileByID(r.Context(), fileID, userID)
	if err != nil {
		logger.Error("get project file", err)
		writeError(w, http.StatusInternalServerError, "Error al procesar el documento")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Archivo no encontrado")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No se proporcionó ningún archivo")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No se proporcionó ningún archivo")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedMimeTypes[contentType] {
		writeError(w, http.StatusBadRequest, "Tipo de archivo no permitido. Solo se permiten PDF, DOC y DOCX")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No se proporcionó ningún archivo")
		return
	}

	if err := h.objectclient.DeleteFile(r.Context(), h.cfg.BucketName, existing.FilePath); err != nil {
		logger.Errorf("delete old object %s: %v", existing.FilePath, err)
	}

	fileName := filepath.Base(header.Filename)
	s3Key := fmt.Sprintf("%s/%s/%s", userID, existing.ProjectID, fileName)
	if _, err := h.objectclient.UploadFile(r.Context(), h.cfg.BucketName, s3Key, data, contentType); err != nil {
		logger.Errorf("s3 backup for %s: %v", fileName, err)
	}

	now := time.Now()
	existing.FileName = fileName
	existing.FilePath = s3Key
	existing.FileSize = int64(len(data))
	existing.MimeType = contentType
	existing.UpdatedAt = now
	if err := h.dbclient.UpdateProjectFile(r.Context(), existing); err != nil {
		logger.Error("update project file", err)
		writeErrorDetails(w, http.StatusInternalServerError, "Error al procesar el documento", err.Error())
		return
	}

	result, err := h.pipeline.Process(r.Context(), &ingest.Request{
		FileName:   fileName,
		MimeType:   contentType,
		Data:       data,
		ProjectID:  existing.ProjectID,
		UserID:     userID,
		UploadedAt: now,
	})
	if err != nil {
		h.writeIngestError(w, fileName, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"fileName": fileName,
		"chunks":   result.Chunks,
		"message":  fmt.Sprintf("Documento procesado exitosamente en %d fragmentos", result.Chunks),
	})
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	fileID := chi.URLParam(r, "id")
	existing, err := h.dbclient.GetProjectFileByID(r.Context(), fileID, userID)
	if err != nil {
		logger.Error("get project file", err)
		writeError(w, http.StatusInternalServerError, "Error al eliminar el archivo")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Archivo no encontrado")
		return
	}

	if err := h.objectclient.DeleteFile(r.Context(), h.cfg.BucketName, existing.FilePath); err != nil {
		logger.Errorf("delete object %s: %v", existing.FilePath, err)
	}
	if err := h.dbclient.DeleteProjectFile(r.Context(), fileID, userID); err != nil {
		logger.Error("delete project file", err)
		writeError(w, http.StatusInternalServerError, "Error al eliminar el archivo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Download hands the browser a presigned URL instead of proxying the bytes.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	fileID := chi.URLParam(r, "id")
	existing, err := h.dbclient.GetProjectFileByID(r.Context(), fileID, userID)
	if err != nil {
		logger.Error("get project file", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener el archivo")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Archivo no encontrado")
		return
	}

	url, err := h.objectclient.PresignDownload(r.Context(), h.cfg.BucketName, existing.FilePath, time.Hour)
	if err != nil {
		logger.Error("presign download", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener el archivo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url, "fileName": existing.FileName})
}

// writeIngestError maps pipeline failures onto the API's status codes.
// Quota exhaustion is retryable, so it gets 503 rather than 500.
func (h *FileHandler) writeIngestError(w http.ResponseWriter, fileName string, err error) {
	logger.Errorf("ingest %s: %v", fileName, err)

	switch {
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "Tipo de archivo no permitido. Solo se permiten PDF, DOC y DOCX")
	case errors.Is(err, ingest.ErrEmptyInput), errors.Is(err, ingest.ErrEmptyDocument):
		writeError(w, http.StatusBadRequest, "No se pudo extraer texto del documento")
	case errors.Is(err, ingest.ErrInsufficientText):
		writeError(w, http.StatusBadRequest, "El documento no contiene suficiente texto para procesar")
	case errors.Is(err, core.ErrQuotaExceeded):
		writeErrorDetails(w, http.StatusServiceUnavailable,
			"Servicio de procesamiento temporalmente no disponible. Intenta de nuevo en unos minutos", err.Error())
	default:
		writeErrorDetails(w, http.StatusInternalServerError, "Error al procesar el documento", err.Error())
	}
}
