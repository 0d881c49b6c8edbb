package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapScriptEmbedded(t *testing.T) {
	script, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	require.NoError(t, err)

	sql := string(script)
	assert.Contains(t, sql, "CREATE EXTENSION IF NOT EXISTS vector")
	for _, table := range []string{"users", "projects", "project_files", "vector_documents", "jarvis_meta"} {
		assert.Contains(t, sql, table)
	}
}
