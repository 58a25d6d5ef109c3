// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Frame API server.

Quickly Frame lets users author frames, interactive cards embedded in a
social feed, from templates such as a poll. Owners edit a draft config and
publish it; feed clients see the published version and press its buttons.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=frames.db SESSION_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Session Tokens

Owner routes need a Bearer token signed with SESSION_SECRET:

	go run . issue-token alice

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - SESSION_SECRET (-session-secret): HS256 key for session tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - PREVIEW_DIR, FONTS_URL, BASE_URL, LOG_LEVEL, LOG_FORMAT,
    INTERACT_RATE, INTERACT_BURST, VIEW_CACHE_SIZE

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (owner API, public frames)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, sessions, rate limiting, JSON helpers
  - frame: Owner-scoped frame access (draft, publish, webhooks)
  - templates, templates/poll: Template registry and the poll template
  - fonts, preview, cache: Font loading, preview storage, view cache
  - db: Connections, schema and the frame store
  - models: Frame and request/response types
  - auth, session: Session tokens and the request session
  - logging, metrics: slog setup and Prometheus collectors
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
