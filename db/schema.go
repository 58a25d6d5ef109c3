// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == DriverPostgres {
		schema = postgresSchema
	}

	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const postgresSchema = `
-- Frames
CREATE TABLE IF NOT EXISTS frame (
    id TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    template TEXT NOT NULL,
    config JSONB NOT NULL,
    draft_config JSONB NOT NULL,
    storage JSONB NOT NULL DEFAULT '{}',
    linked_page TEXT,
    webhooks JSONB NOT NULL DEFAULT '{}',
    current_month_calls INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_frame_owner ON frame(owner);
CREATE INDEX IF NOT EXISTS idx_frame_owner_updated ON frame(owner, updated_at);
`

const sqliteSchema = `
-- Frames
CREATE TABLE IF NOT EXISTS frame (
    id TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    template TEXT NOT NULL,
    config TEXT NOT NULL,
    draft_config TEXT NOT NULL,
    storage TEXT NOT NULL DEFAULT '{}',
    linked_page TEXT,
    webhooks TEXT NOT NULL DEFAULT '{}',
    current_month_calls INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_frame_owner ON frame(owner);
CREATE INDEX IF NOT EXISTS idx_frame_owner_updated ON frame(owner, updated_at);
`
