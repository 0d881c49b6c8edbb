package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MarroquinRiv/jarvis/internal/config"
	"github.com/MarroquinRiv/jarvis/internal/core"
	"github.com/MarroquinRiv/jarvis/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Projects

func (c *DatabaseClient) CreateProject(ctx context.Context, p *models.Project) error {
	if p == nil {
		return errors.New("nil project")
	}
	const q = `
		INSERT INTO projects (id, user_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := c.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetProjectByID(ctx context.Context, id, userID string) (*models.Project, error) {
	const q = `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM projects
		WHERE id = $1 AND user_id = $2
	`
	var p models.Project
	err := c.db.QueryRowContext(ctx, q, id, userID).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *DatabaseClient) ListProjectsByUser(ctx context.Context, userID string) ([]models.Project, error) {
	const q = `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProject patches name and/or description; nil fields keep the
// current value.
func (c *DatabaseClient) UpdateProject(ctx context.Context, id, userID string, name, description *string) (*models.Project, error) {
	const q = `
		UPDATE projects
		SET name = COALESCE($3, name),
		    description = COALESCE($4, description),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, description, created_at, updated_at
	`
	var p models.Project
	err := c.db.QueryRowContext(ctx, q, id, userID, name, description).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *DatabaseClient) DeleteProject(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM projects WHERE id = $1 AND user_id = $2`
	res, err := c.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("project not found: %s", id)
	}
	return nil
}

// Project files

func (c *DatabaseClient) CreateProjectFile(ctx context.Context, f *models.ProjectFile) error {
	if f == nil {
		return errors.New("nil project file")
	}
	const q = `
		INSERT INTO project_files
			(id, project_id, user_id, file_name, file_path, file_size, mime_type, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := c.db.ExecContext(ctx, q,
		f.ID, f.ProjectID, f.UserID, f.FileName, f.FilePath, f.FileSize, f.MimeType, f.CreatedAt, f.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetProjectFileByID(ctx context.Context, id, userID string) (*models.ProjectFile, error) {
	const q = `
		SELECT id, project_id, user_id, file_name, file_path, file_size, mime_type, created_at, updated_at
		FROM project_files
		WHERE id = $1 AND user_id = $2
	`
	var f models.ProjectFile
	err := c.db.QueryRowContext(ctx, q, id, userID).Scan(
		&f.ID, &f.ProjectID, &f.UserID, &f.FileName, &f.FilePath, &f.FileSize, &f.MimeType, &f.CreatedAt, &f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *DatabaseClient) ListFilesByProject(ctx context.Context, projectID, userID string) ([]models.ProjectFile, error) {
	const q = `
		SELECT id, project_id, user_id, file_name, file_path, file_size, mime_type, created_at, updated_at
		FROM project_files
		WHERE project_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, projectID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProjectFile
	for rows.Next() {
		var f models.ProjectFile
		if err := rows.Scan(
			&f.ID, &f.ProjectID, &f.UserID, &f.FileName, &f.FilePath, &f.FileSize, &f.MimeType, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateProjectFile(ctx context.Context, f *models.ProjectFile) error {
	if f == nil {
		return errors.New("nil project file")
	}
	const q = `
		UPDATE project_files
		SET file_name = $3, file_path = $4, file_size = $5, mime_type = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`
	res, err := c.db.ExecContext(ctx, q, f.ID, f.UserID, f.FileName, f.FilePath, f.FileSize, f.MimeType)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("file not found: %s", f.ID)
	}
	return nil
}

func (c *DatabaseClient) DeleteProjectFile(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM project_files WHERE id = $1 AND user_id = $2`
	res, err := c.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("file not found: %s", id)
	}
	return nil
}

// Vector documents

// InsertVectorDocuments writes one row per chunk, in order, as individual
// statements. A failing insert stops the loop and reports the chunk index;
// rows already written stay put (partial persistence is accepted behavior).
func (c *DatabaseClient) InsertVectorDocuments(ctx context.Context, docs []models.VectorDocument) error {
	if len(docs) == 0 {
		return nil
	}
	const q = `
		INSERT INTO vector_documents (id, content, metadata, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := c.db.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range docs {
		d := &docs[i]
		meta, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for chunk %d: %w", i, err)
		}
		vec := pgvector.NewVector(d.Embedding)
		if _, err := stmt.ExecContext(ctx, d.ID, d.Content, meta, vec, d.CreatedAt); err != nil {
			return fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}
	return nil
}

// SearchVectorDocuments finds the top-k chunks of a project nearest to the
// query embedding.
func (c *DatabaseClient) SearchVectorDocuments(ctx context.Context, projectID string, queryVec []float32, limit int) ([]models.VectorDocument, error) {
	const q = `
		SELECT id, content, metadata, embedding, created_at
		FROM vector_documents
		WHERE metadata ->> 'project_id' = $1
		ORDER BY embedding <-> $2
		LIMIT $3
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := c.db.QueryContext(ctx, q, projectID, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.VectorDocument
	for rows.Next() {
		var (
			d    models.VectorDocument
			meta []byte
			emb  pgvector.Vector
		)
		if err := rows.Scan(&d.ID, &d.Content, &meta, &emb, &d.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meta, &d.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for %s: %w", d.ID, err)
		}
		d.Embedding = emb.Slice()
		out = append(out, d)
	}
	return out, rows.Err()
}
