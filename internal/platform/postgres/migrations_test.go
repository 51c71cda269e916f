package postgres

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		content, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+entry.Name())
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(entry.Name(), ".sql"), entry.Name())
		assert.Contains(t, string(content), "-- +goose Up", entry.Name())
		assert.Contains(t, string(content), "-- +goose Down", entry.Name())
	}
}

func TestParseTargetVersion(t *testing.T) {
	v, err := parseTargetVersion([]string{"3"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	_, err = parseTargetVersion(nil)
	assert.Error(t, err)
	_, err = parseTargetVersion([]string{"abc"})
	assert.Error(t, err)
	_, err = parseTargetVersion([]string{"-1"})
	assert.Error(t, err)
}

func TestRunMigrations_UnknownCommand(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = RunMigrations(context.Background(), db, nil, "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}
