// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package matchcache stores resolved poster matches keyed by subject
// fingerprint so that identical subjects are only resolved once.
package matchcache

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/marquee/internal/dbinterface"
	"github.com/autobrr/marquee/internal/models"
)

type Cache struct {
	store *models.PosterMatchStore
}

func New(db dbinterface.Querier) *Cache {
	return &Cache{store: models.NewPosterMatchStore(db)}
}

// WithQuerier returns a cache writing through q, typically an open transaction.
func (c *Cache) WithQuerier(q dbinterface.Querier) *Cache {
	return &Cache{store: c.store.WithQuerier(q)}
}

// TryGet returns the row for fingerprint. Missing, corrupt and unreadable
// rows are all reported as a miss.
func (c *Cache) TryGet(ctx context.Context, fingerprint string) (*models.PosterMatch, bool) {
	m, err := c.store.Get(ctx, fingerprint)
	if err != nil {
		if !errors.Is(err, models.ErrPosterMatchNotFound) {
			log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("poster match cache read failed, treating as miss")
		}
		return nil, false
	}
	return m, true
}

// Upsert merges u into the cached row. Only call it after a poster was
// persisted for the subject.
func (c *Cache) Upsert(ctx context.Context, u models.PosterMatchUpsert) error {
	return c.store.Upsert(ctx, u)
}

// Invalidate drops the row for r's current subject. It reports whether a
// row was removed.
func (c *Cache) Invalidate(ctx context.Context, r *models.Release) (bool, error) {
	fp := FingerprintForRelease(r)
	deleted, err := c.store.Delete(ctx, fp)
	if err != nil {
		return false, err
	}
	log.Debug().Int64("release_id", r.ID).Str("fingerprint", fp).Bool("deleted", deleted).Msg("invalidated poster match")
	return deleted, nil
}

func (c *Cache) List(ctx context.Context, limit int) ([]*models.PosterMatch, error) {
	return c.store.List(ctx, limit)
}

func (c *Cache) Count(ctx context.Context) (int, error) {
	return c.store.Count(ctx)
}

// Delete removes a row by fingerprint.
func (c *Cache) Delete(ctx context.Context, fingerprint string) (bool, error) {
	return c.store.Delete(ctx, fingerprint)
}
