// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package preview pulls PNG previews out of submitted markup and stores them.
package preview

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

const dataURLPrefix = "data:image/png;base64,"

var (
	ErrMissingImage   = errors.New("preview: no png data url found")
	ErrInvalidFrameID = errors.New("preview: invalid frame id")
)

// Extract returns the base64 payload of the first PNG data URL in input.
// The payload ends at the next double quote or at the end of input.
func Extract(input string) (string, error) {
	start := strings.Index(input, dataURLPrefix)
	if start < 0 {
		return "", ErrMissingImage
	}
	rest := input[start+len(dataURLPrefix):]
	if end := strings.IndexByte(rest, '"'); end >= 0 {
		rest = rest[:end]
	}
	return rest, nil
}

// Uploader stores the preview image of a frame.
type Uploader interface {
	Upload(ctx context.Context, frameID, base64PNG string) error
}

// FSUploader writes previews as <frameID>.png under dir.
type FSUploader struct {
	fs  afero.Fs
	dir string
}

func NewFSUploader(fs afero.Fs, dir string) *FSUploader {
	return &FSUploader{fs: fs, dir: dir}
}

func (u *FSUploader) Upload(ctx context.Context, frameID, base64PNG string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if frameID == "" || frameID != filepath.Base(frameID) || frameID == "." || frameID == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidFrameID, frameID)
	}

	data, err := base64.StdEncoding.DecodeString(base64PNG)
	if err != nil {
		return fmt.Errorf("preview: invalid base64 payload: %w", err)
	}

	if err := u.fs.MkdirAll(u.dir, 0o755); err != nil {
		return fmt.Errorf("preview: failed to create %s: %w", u.dir, err)
	}

	path := u.Path(frameID)
	if err := afero.WriteFile(u.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("preview: failed to write %s: %w", path, err)
	}

	slog.Info("preview stored",
		"frame_id", frameID,
		"size", humanize.Bytes(uint64(len(data))),
	)
	return nil
}

// Path is where the preview of frameID lives.
func (u *FSUploader) Path(frameID string) string {
	return filepath.Join(u.dir, frameID+".png")
}
