// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package posterstore

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var ErrInvalidImage = errors.New("poster is not a decodable image")

// minPosterEdge rejects tracking pixels and placeholder images.
const minPosterEdge = 16

type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// Inspect decodes only the image header and reports format and dimensions.
func Inspect(data []byte) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, fmt.Errorf("%w: empty body", ErrInvalidImage)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width < minPosterEdge || cfg.Height < minPosterEdge {
		return ImageInfo{}, fmt.Errorf("%w: %dx%d is too small", ErrInvalidImage, cfg.Width, cfg.Height)
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Validate reports whether data is an image worth storing as a poster.
func Validate(data []byte) error {
	_, err := Inspect(data)
	return err
}

func extensionFor(format string) string {
	switch format {
	case "jpeg", "jpg":
		return ".jpg"
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	case "webp":
		return ".webp"
	default:
		return ".img"
	}
}
