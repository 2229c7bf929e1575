package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema is the idempotent DDL for admins, posts and attachments.
//
//go:embed schema.sql
var Schema string

// Migrate applies Schema. Every statement is guarded with IF NOT EXISTS so it
// is safe to run on each deploy.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
