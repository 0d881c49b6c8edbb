package core

import (
	"context"
	"time"

	"github.com/MarroquinRiv/jarvis/internal/models"
)

// DbClient defines all persistence operations the handlers and the ingestion
// pipeline need. It abstracts Postgres/pgvector so higher layers never depend
// on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateProject(ctx context.Context, p *models.Project) error
	GetProjectByID(ctx context.Context, id, userID string) (*models.Project, error)
	ListProjectsByUser(ctx context.Context, userID string) ([]models.Project, error)
	UpdateProject(ctx context.Context, id, userID string, name, description *string) (*models.Project, error)
	DeleteProject(ctx context.Context, id, userID string) error

	CreateProjectFile(ctx context.Context, f *models.ProjectFile) error
	GetProjectFileByID(ctx context.Context, id, userID string) (*models.ProjectFile, error)
	ListFilesByProject(ctx context.Context, projectID, userID string) ([]models.ProjectFile, error)
	UpdateProjectFile(ctx context.Context, f *models.ProjectFile) error
	DeleteProjectFile(ctx context.Context, id, userID string) error

	// InsertVectorDocuments writes one row per chunk, in order. Inserts are
	// individual statements: a failure aborts the remaining rows but leaves
	// already-written rows in place.
	InsertVectorDocuments(ctx context.Context, docs []models.VectorDocument) error
	SearchVectorDocuments(ctx context.Context, projectID string, queryVec []float32, limit int) ([]models.VectorDocument, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)

	// PresignDownload returns a time-limited GET URL for the object.
	PresignDownload(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}
