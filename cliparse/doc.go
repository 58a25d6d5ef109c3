// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - SessionSecret: HS256 key for session tokens (required)
  - PreviewDir: where preview PNGs are written (default: previews)
  - FontsURL: Google Fonts API base (default: https://fonts.googleapis.com)
  - BaseURL: public URL of this server
  - LogLevel, LogFormat: slog settings (default: info, json)
  - InteractRate, InteractBurst: public endpoint rate limit (default: 5/s, 10)
  - ViewCacheSize: rendered views kept in memory (default: 512)
  - TrustedProxies: peers allowed to set X-Forwarded-For (default: none)

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	SESSION_SECRET  → -session-secret
	PREVIEW_DIR     → -preview-dir
	FONTS_URL       → -fonts-url
	BASE_URL        → -base-url
	LOG_LEVEL       → -log-level
	LOG_FORMAT      → -log-format
	INTERACT_RATE   → -rate
	INTERACT_BURST  → -burst
	VIEW_CACHE_SIZE → -cache-size
	TRUSTED_PROXIES → -trusted-proxies

CLI flags take precedence over environment variables. Variables in the env
file (-env, default .env) are loaded first when the file exists, without
overriding anything already set.

# Validation

ParseFlags returns an error if required values are missing or invalid:

  - DATABASE_URL must be provided
  - SESSION_SECRET must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - TRUSTED_PROXIES entries must be IPs or CIDRs
*/
package cliparse
