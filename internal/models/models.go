package models

import (
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Project groups the documents a user uploads and chats about.
type Project struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ProjectFile is the record kept for every uploaded document.
// FilePath is the object-storage key; the raw bytes live in S3, not here.
type ProjectFile struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"project_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FilePath  string    `db:"file_path" json:"file_path"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	MimeType  string    `db:"mime_type" json:"mime_type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ChunkMetadata carries the provenance of one text chunk. It is serialized
// into the jsonb column of vector_documents alongside the embedding.
type ChunkMetadata struct {
	Source      string    `json:"source"`
	MimeType    string    `json:"mime_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
	ProjectID   string    `json:"project_id"`
	UserID      string    `json:"user_id"`
}

// VectorDocument is one persisted chunk+embedding record. Rows are written
// once and never mutated; re-uploading a same-named file appends new rows
// rather than superseding the old ones.
type VectorDocument struct {
	ID        string        `db:"id" json:"id"`
	Content   string        `db:"content" json:"content"`
	Metadata  ChunkMetadata `db:"metadata" json:"metadata"`
	Embedding []float32     `db:"embedding" json:"embedding"` // pgvector column
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}
