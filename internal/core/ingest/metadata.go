package ingest

import (
	"time"

	"github.com/MarroquinRiv/jarvis/internal/models"
)

// BuildChunkMetadata attaches provenance to one chunk. Pure; the caller
// supplies now so a whole run shares a single upload timestamp.
func BuildChunkMetadata(fileName string, chunkIndex, totalChunks int, projectID, userID, mimeType string, now time.Time) models.ChunkMetadata {
	return models.ChunkMetadata{
		Source:      fileName,
		MimeType:    mimeType,
		UploadedAt:  now,
		ChunkIndex:  chunkIndex,
		TotalChunks: totalChunks,
		ProjectID:   projectID,
		UserID:      userID,
	}
}
