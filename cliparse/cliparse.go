package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	SessionSecret string
	PreviewDir    string
	FontsURL      string
	BaseURL       string
	LogLevel      string
	LogFormat     string
	InteractRate  int
	InteractBurst int
	ViewCacheSize int
	EnvFile       string

	// TrustedProxies may set X-Forwarded-For and X-Real-IP.
	TrustedProxies []netip.Prefix
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("quickly-frame", flag.ContinueOnError)

	// Network and storage
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.PreviewDir, "preview-dir", "", "Directory for frame preview images")
	fs.StringVar(&cfg.FontsURL, "fonts-url", "", "Google Fonts API base URL")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL of this server")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session token signing secret (prefer env)")

	// Tuning
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (json or text)")
	fs.IntVar(&cfg.InteractRate, "rate", 0, "Public interaction requests per second per client")
	fs.IntVar(&cfg.InteractBurst, "burst", 0, "Public interaction burst size")
	fs.IntVar(&cfg.ViewCacheSize, "cache-size", 0, "Number of rendered frame views to cache")
	fs.StringVar(&cfg.EnvFile, "env", ".env", "Optional env file")
	trustedProxies := fs.String("trusted-proxies", "", "Comma-separated proxy IPs or CIDRs allowed to set forwarding headers")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// A missing env file is fine; existing variables always win.
	if cfg.EnvFile != "" {
		if _, err := os.Stat(cfg.EnvFile); err == nil {
			if err := godotenv.Load(cfg.EnvFile); err != nil {
				return Config{}, fmt.Errorf("failed to load env file %s: %w", cfg.EnvFile, err)
			}
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := intFromEnv("PORT", 3318)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = stringFromEnv("DATABASE_TYPE", DatabaseSQLite)
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q (sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.PreviewDir == "" {
		cfg.PreviewDir = stringFromEnv("PREVIEW_DIR", "previews")
	}
	if cfg.FontsURL == "" {
		cfg.FontsURL = stringFromEnv("FONTS_URL", "https://fonts.googleapis.com")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = stringFromEnv("BASE_URL", "http://localhost:"+strconv.Itoa(cfg.Port))
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = stringFromEnv("LOG_LEVEL", "info")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("unsupported log level %q", cfg.LogLevel)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = stringFromEnv("LOG_FORMAT", "json")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return Config{}, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}

	if cfg.InteractRate == 0 {
		rate, err := intFromEnv("INTERACT_RATE", 5)
		if err != nil {
			return Config{}, err
		}
		cfg.InteractRate = rate
	}
	if cfg.InteractBurst == 0 {
		burst, err := intFromEnv("INTERACT_BURST", 10)
		if err != nil {
			return Config{}, err
		}
		cfg.InteractBurst = burst
	}
	if cfg.ViewCacheSize == 0 {
		size, err := intFromEnv("VIEW_CACHE_SIZE", 512)
		if err != nil {
			return Config{}, err
		}
		cfg.ViewCacheSize = size
	}

	if *trustedProxies == "" {
		*trustedProxies = os.Getenv("TRUSTED_PROXIES")
	}
	proxies, err := parsePrefixes(*trustedProxies)
	if err != nil {
		return Config{}, err
	}
	cfg.TrustedProxies = proxies

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	return cfg, nil
}

// parsePrefixes reads a comma-separated list of CIDRs or bare addresses.
func parsePrefixes(list string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", item, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", item, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func stringFromEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
