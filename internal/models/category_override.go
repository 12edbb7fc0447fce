// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/marquee/internal/database"
	"github.com/autobrr/marquee/internal/dbinterface"
	"github.com/autobrr/marquee/pkg/categories"
)

// CategoryOverrideStore persists per-indexer vendor category mappings.
type CategoryOverrideStore struct {
	db dbinterface.Querier
}

func NewCategoryOverrideStore(db dbinterface.Querier) *CategoryOverrideStore {
	return &CategoryOverrideStore{db: db}
}

func (s *CategoryOverrideStore) List(ctx context.Context) ([]categories.Override, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_name, spec_id, unified_category
		FROM category_overrides
		ORDER BY source_name, spec_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []categories.Override
	for rows.Next() {
		var (
			o       categories.Override
			unified string
		)
		if err := rows.Scan(&o.Source, &o.SpecID, &unified); err != nil {
			return nil, err
		}
		u, err := categories.ParseUnified(unified)
		if err != nil {
			log.Warn().Str("source", o.Source).Int("spec_id", o.SpecID).Str("unified", unified).
				Msg("skipping category override with unknown unified category")
			continue
		}
		o.Unified = u
		out = append(out, o)
	}
	return out, rows.Err()
}

func validateOverride(o categories.Override) (categories.Override, error) {
	o.Source = strings.ToLower(strings.TrimSpace(o.Source))
	if o.Source == "" {
		return o, errors.New("source is required")
	}
	if o.SpecID < categories.SpecIDThreshold {
		return o, fmt.Errorf("spec id %d is not a vendor category", o.SpecID)
	}
	if !o.Unified.Valid() {
		return o, fmt.Errorf("unknown unified category %q", o.Unified)
	}
	return o, nil
}

const upsertOverrideTemplate = `
	INSERT INTO category_overrides (source_name, spec_id, unified_category)
	VALUES %s
	ON CONFLICT(source_name, spec_id)
	DO UPDATE SET unified_category = excluded.unified_category
`

func (s *CategoryOverrideStore) Upsert(ctx context.Context, o categories.Override) error {
	return s.UpsertMany(ctx, []categories.Override{o})
}

// UpsertMany validates every override before writing any. When the same
// (source, spec) appears twice the later entry wins.
func (s *CategoryOverrideStore) UpsertMany(ctx context.Context, overrides []categories.Override) error {
	index := make(map[string]int, len(overrides))
	valid := make([]categories.Override, 0, len(overrides))
	for _, o := range overrides {
		o, err := validateOverride(o)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s/%d", o.Source, o.SpecID)
		if i, ok := index[key]; ok {
			valid[i] = o
			continue
		}
		index[key] = len(valid)
		valid = append(valid, o)
	}

	chunks, err := database.Chunk(valid, database.MaxParams/3)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		args := make([]any, 0, len(chunk)*3)
		for _, o := range chunk {
			args = append(args, o.Source, o.SpecID, string(o.Unified))
		}
		query := dbinterface.BuildQueryWithPlaceholders(upsertOverrideTemplate, 3, len(chunk))
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *CategoryOverrideStore) Delete(ctx context.Context, source string, specID int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM category_overrides WHERE source_name = ? AND spec_id = ?
	`, strings.ToLower(strings.TrimSpace(source)), specID)
	return err
}
