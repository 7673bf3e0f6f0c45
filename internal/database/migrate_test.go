package database

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	raw, err := fs.ReadFile(migrations, "migrations/00001_create_users.sql")
	require.NoError(t, err)

	schema := string(raw)
	assert.Contains(t, schema, "-- +goose Up")
	assert.Contains(t, schema, "-- +goose Down")
	assert.Contains(t, schema, "UNIQUE (email)")
	assert.True(t, strings.Contains(schema, "CHECK (email = lower(email))"))
}

func TestRunMigrations_UnknownCommand(t *testing.T) {
	err := RunMigrations(context.Background(), "postgres://unused", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}
