package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema migrations. goose works on
// database/sql, so it gets its own short-lived connection through the pgx
// stdlib driver rather than the request pool.
func Migrate(ctx context.Context, dsn string) error {
	return RunMigrations(ctx, dsn, "up")
}

// RunMigrations runs a goose command (up, down, status, version, redo,
// reset) against the embedded migrations.
func RunMigrations(ctx context.Context, dsn string, command string, args ...string) error {
	if !knownCommand(command) {
		return fmt.Errorf("unknown migration command %q", command)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, "migrations", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func knownCommand(command string) bool {
	switch command {
	case "up", "up-by-one", "down", "redo", "reset", "status", "version":
		return true
	}
	return false
}
