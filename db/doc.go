// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation and frame persistence.

# Connections

Open picks the driver from the configured database type:

	conn, err := db.Open(ctx, "postgres", url) // lib/pq
	conn, err := db.Open(ctx, "sqlite", path)  // modernc.org/sqlite

SQLite connections are limited to one open connection.

# Schema Creation

CreateSchema initializes the frame table for the connection's dialect:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for the table and indexes.
JSON columns are JSONB on Postgres and TEXT on SQLite.

# Frame Store

FrameStore is the only code that writes SQL for frames. Queries are written
with ? placeholders and rebound per driver by sqlx.

	store := db.NewFrameStore(conn)
	frames, err := store.Select(ctx, db.Filter{Owner: userID}, db.Query{NewestFirst: true, Limit: 10})
	n, err := store.Update(ctx, db.Filter{ID: id, Owner: userID}, db.FrameUpdate{Name: &name})

Filter fields combine with AND. Update and Delete refuse an empty filter.
Insert uses RETURNING so the caller sees the row exactly as stored.

# Indexes

  - frame.owner
  - frame.(owner, updated_at)
*/
package db
