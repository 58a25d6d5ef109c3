// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fonts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrNoFaces  = errors.New("fonts: stylesheet contained no font faces")
	ErrTooLarge = errors.New("fonts: response exceeds size limit")
)

// Font is one weight/style of a family, ready to hand to a renderer.
type Font struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
	Style  string `json:"style"`
	Data   []byte `json:"-"`
}

// Loader fetches every variant of a font family.
type Loader interface {
	LoadFamily(ctx context.Context, family string) ([]Font, error)
}

// Old user agents get TrueType instead of woff2, which is what image
// renderers can read.
const userAgent = "Mozilla/5.0 (compatible; quickly-frame/1.0)"

const maxFontBytes = 8 << 20

var (
	faceBlock   = regexp.MustCompile(`@font-face\s*\{([^}]*)\}`)
	styleDecl   = regexp.MustCompile(`font-style:\s*([a-z]+)`)
	weightDecl  = regexp.MustCompile(`font-weight:\s*(\d+)`)
	srcURLDecl  = regexp.MustCompile(`src:\s*url\(\s*['"]?([^'")]+)['"]?\s*\)`)
	allVariants = variantAxes()
)

// variantAxes lists weights 100-900 in normal then italic, the order the
// css2 API requires.
func variantAxes() string {
	var parts []string
	for _, ital := range []int{0, 1} {
		for w := 100; w <= 900; w += 100 {
			parts = append(parts, strconv.Itoa(ital)+","+strconv.Itoa(w))
		}
	}
	return strings.Join(parts, ";")
}

// GoogleLoader loads families from the Google Fonts css2 API and keeps the
// most recently used families in memory.
type GoogleLoader struct {
	baseURL  string
	client   *http.Client
	cache    *lru.Cache[string, []Font]
	maxBytes int64
}

func NewGoogleLoader(baseURL string, client *http.Client, cacheSize int) (*GoogleLoader, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	cache, err := lru.New[string, []Font](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("fonts: failed to create cache: %w", err)
	}
	return &GoogleLoader{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   client,
		cache:    cache,
		maxBytes: maxFontBytes,
	}, nil
}

// LoadFamily returns all weights and styles of family.
func (l *GoogleLoader) LoadFamily(ctx context.Context, family string) ([]Font, error) {
	if cached, ok := l.cache.Get(family); ok {
		return cached, nil
	}

	cssURL := l.baseURL + "/css2?family=" + strings.ReplaceAll(family, " ", "+") + ":ital,wght@" + allVariants
	css, err := l.fetch(ctx, cssURL)
	if err != nil {
		return nil, err
	}

	faces := parseFaces(string(css))
	if len(faces) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFaces, family)
	}

	loaded := make([]Font, 0, len(faces))
	for _, face := range faces {
		data, err := l.fetch(ctx, face.url)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, Font{
			Name:   family,
			Weight: face.weight,
			Style:  face.style,
			Data:   data,
		})
	}

	l.cache.Add(family, loaded)
	return loaded, nil
}

func (l *GoogleLoader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fonts: failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fonts: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fonts: %s returned %s", url, resp.Status)
	}

	// One byte past the limit tells a full-size file from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fonts: failed to read %s: %w", url, err)
	}
	if int64(len(body)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, url, l.maxBytes)
	}
	return body, nil
}

type face struct {
	style  string
	weight int
	url    string
}

// parseFaces extracts one source per weight/style from a css2 stylesheet.
func parseFaces(css string) []face {
	seen := make(map[string]bool)
	var faces []face

	for _, block := range faceBlock.FindAllStringSubmatch(css, -1) {
		body := block[1]

		src := srcURLDecl.FindStringSubmatch(body)
		weight := weightDecl.FindStringSubmatch(body)
		if src == nil || weight == nil {
			continue
		}
		w, err := strconv.Atoi(weight[1])
		if err != nil {
			continue
		}

		style := "normal"
		if m := styleDecl.FindStringSubmatch(body); m != nil {
			style = m[1]
		}

		key := style + "/" + weight[1]
		if seen[key] {
			continue
		}
		seen[key] = true

		faces = append(faces, face{style: style, weight: w, url: src[1]})
	}

	return faces
}
