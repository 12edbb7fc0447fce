// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package posterstore keeps downloaded poster images under a single root
// directory and refuses any name that would resolve outside of it.
package posterstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrUnsafePath = errors.New("poster path escapes storage root")

type Store struct {
	root string
}

// New opens the store rooted at dir, creating it when missing.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("poster root is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve poster root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create poster root: %w", err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Root() string {
	return s.root
}

// ResolveStoredPath maps a stored relative name to its absolute path.
// Absolute names and names that climb out of the root are rejected.
func (s *Store) ResolveStoredPath(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}

	full := filepath.Join(s.root, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return full, nil
}

// NameFor returns the stored name for a fingerprint, sharded by the last
// two hex characters so no single directory grows unbounded.
func NameFor(fingerprint, format string) string {
	fp := strings.ToLower(strings.TrimSpace(fingerprint))
	shard := "00"
	if len(fp) >= 2 {
		shard = fp[len(fp)-2:]
	}
	return shard + "/" + fp + extensionFor(format)
}

// Save writes data under name atomically: it is written to a temp file in
// the target directory and renamed into place. A cancelled ctx leaves no
// file behind.
func (s *Store) Save(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("refusing to store empty poster")
	}
	full, err := s.ResolveStoredPath(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create poster directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".poster-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp poster: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if rmErr := os.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn().Err(rmErr).Str("path", tmpName).Msg("failed to remove temp poster")
		}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("failed to write poster: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to close poster: %w", err)
	}
	if err := ctx.Err(); err != nil {
		cleanup()
		return "", err
	}
	if err := os.Rename(tmpName, full); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to move poster into place: %w", err)
	}

	return full, nil
}

// Remove deletes a stored poster. Missing files are not an error.
func (s *Store) Remove(name string) error {
	full, err := s.ResolveStoredPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove poster: %w", err)
	}
	return nil
}

// Exists reports whether name resolves to a regular, non-empty file.
func (s *Store) Exists(name string) bool {
	full, err := s.ResolveStoredPath(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// Size returns the stored file size in bytes.
func (s *Store) Size(name string) (int64, error) {
	full, err := s.ResolveStoredPath(name)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
