// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/autobrr/marquee/internal/database"
	"github.com/autobrr/marquee/internal/dbinterface"
	"github.com/autobrr/marquee/pkg/categories"
)

var ErrReleaseNotFound = errors.New("release not found")

// Release is an ingested indexer release. Ingestion owns title, year and
// category ids; classification and poster fetching write back the rest.
type Release struct {
	ID              int64              `json:"id"`
	SourceName      string             `json:"sourceName"`
	Title           string             `json:"title"`
	NormalizedTitle string             `json:"normalizedTitle"`
	Year            *int               `json:"year,omitempty"`
	CategoryIDs     []int              `json:"categoryIds"`
	StdCategoryID   *int               `json:"stdCategoryId,omitempty"`
	SpecCategoryID  *int               `json:"specCategoryId,omitempty"`
	MediaType       string             `json:"mediaType"`
	UnifiedCategory categories.Unified `json:"unifiedCategory"`

	ExternalProvider   string `json:"externalProvider,omitempty"`
	ExternalProviderID string `json:"externalProviderId,omitempty"`

	PosterFile       string     `json:"posterFile,omitempty"`
	PosterProvider   string     `json:"posterProvider,omitempty"`
	PosterProviderID string     `json:"posterProviderId,omitempty"`
	PosterLang       string     `json:"posterLang,omitempty"`
	PosterSize       string     `json:"posterSize,omitempty"`
	PosterUpdatedAt  *time.Time `json:"posterUpdatedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasPoster reports whether a poster file is recorded for the release.
func (r *Release) HasPoster() bool {
	return strings.TrimSpace(r.PosterFile) != ""
}

// PosterUpdate is the poster data written back after a successful fetch.
type PosterUpdate struct {
	File       string
	Provider   string
	ProviderID string
	Lang       string
	Size       string
}

type ReleaseStore struct {
	db dbinterface.Querier
}

func NewReleaseStore(db dbinterface.Querier) *ReleaseStore {
	return &ReleaseStore{db: db}
}

// WithQuerier returns a store bound to q, typically an open transaction.
func (s *ReleaseStore) WithQuerier(q dbinterface.Querier) *ReleaseStore {
	return &ReleaseStore{db: q}
}

const releaseColumns = `
	id, source_name, title, normalized_title, year, category_ids,
	std_category_id, spec_category_id, media_type, unified_category,
	ext_provider, ext_provider_id,
	poster_file, poster_provider, poster_provider_id, poster_lang, poster_size, poster_updated_ts,
	created_ts, updated_ts
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRelease(row rowScanner) (*Release, error) {
	var (
		r                                        Release
		year, std, spec, posterUpdated           sql.NullInt64
		categoryIDs, unified                     string
		extProvider, extProviderID               sql.NullString
		posterFile, posterProvider, posterProvID sql.NullString
		posterLang, posterSize                   sql.NullString
		createdTs, updatedTs                     int64
	)

	if err := row.Scan(
		&r.ID, &r.SourceName, &r.Title, &r.NormalizedTitle, &year, &categoryIDs,
		&std, &spec, &r.MediaType, &unified,
		&extProvider, &extProviderID,
		&posterFile, &posterProvider, &posterProvID, &posterLang, &posterSize, &posterUpdated,
		&createdTs, &updatedTs,
	); err != nil {
		return nil, err
	}

	r.Year = intFromNull(year)
	r.StdCategoryID = intFromNull(std)
	r.SpecCategoryID = intFromNull(spec)
	r.CategoryIDs = parseCategoryIDs(categoryIDs)

	u, err := categories.ParseUnified(unified)
	if err != nil {
		u = categories.Other
	}
	r.UnifiedCategory = u

	r.ExternalProvider = extProvider.String
	r.ExternalProviderID = extProviderID.String
	r.PosterFile = posterFile.String
	r.PosterProvider = posterProvider.String
	r.PosterProviderID = posterProvID.String
	r.PosterLang = posterLang.String
	r.PosterSize = posterSize.String
	if posterUpdated.Valid {
		ts := time.Unix(posterUpdated.Int64, 0).UTC()
		r.PosterUpdatedAt = &ts
	}
	r.CreatedAt = time.Unix(createdTs, 0).UTC()
	r.UpdatedAt = time.Unix(updatedTs, 0).UTC()

	return &r, nil
}

// Create inserts a release as the ingestion side would.
func (s *ReleaseStore) Create(ctx context.Context, r *Release) (*Release, error) {
	if r == nil {
		return nil, errors.New("release is nil")
	}
	if strings.TrimSpace(r.Title) == "" {
		return nil, errors.New("title is required")
	}

	mediaType := r.MediaType
	if mediaType == "" {
		mediaType = categories.MediaOther
	}
	unified := r.UnifiedCategory
	if !unified.Valid() {
		unified = categories.Other
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO releases (source_name, title, normalized_title, year, category_ids,
			std_category_id, spec_category_id, media_type, unified_category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, r.SourceName, r.Title, r.NormalizedTitle, nullInt(r.Year), formatCategoryIDs(r.CategoryIDs),
		nullInt(r.StdCategoryID), nullInt(r.SpecCategoryID), mediaType, string(unified)).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert release: %w", err)
	}

	return s.Get(ctx, id)
}

func (s *ReleaseStore) Get(ctx context.Context, id int64) (*Release, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+releaseColumns+` FROM releases WHERE id = ?`, id)
	r, err := scanRelease(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReleaseNotFound
		}
		return nil, fmt.Errorf("failed to get release %d: %w", id, err)
	}
	return r, nil
}

// GetForPoster loads what a poster fetch needs. It is Get under the name
// the fetch path uses.
func (s *ReleaseStore) GetForPoster(ctx context.Context, id int64) (*Release, error) {
	return s.Get(ctx, id)
}

// GetMany loads releases by id in parameter-bounded batches. Missing ids are
// absent from the result.
func (s *ReleaseStore) GetMany(ctx context.Context, ids []int64) (map[int64]*Release, error) {
	out := make(map[int64]*Release, len(ids))

	chunks, err := database.Chunk(ids, database.MaxParams)
	if err != nil {
		return nil, err
	}

	for _, chunk := range chunks {
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		query := `SELECT ` + releaseColumns + ` FROM releases WHERE id IN (` + dbinterface.BuildInList(len(chunk)) + `)`
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query releases: %w", err)
		}

		for rows.Next() {
			r, err := scanRelease(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan release: %w", err)
			}
			out[r.ID] = r
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return out, nil
}

// ListIDs returns release ids in id order. With missingPosterOnly set only
// releases without a poster are returned. limit <= 0 means no limit.
func (s *ReleaseStore) ListIDs(ctx context.Context, missingPosterOnly bool, limit int) ([]int64, error) {
	query := `SELECT id FROM releases`
	if missingPosterOnly {
		query += ` WHERE poster_file IS NULL OR poster_file = ''`
	}
	query += ` ORDER BY id`

	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PosterStats counts releases by unified category and whether they have a
// poster.
type PosterStats struct {
	Unified    categories.Unified
	Total      int
	WithPoster int
}

func (s *ReleaseStore) PosterStats(ctx context.Context) ([]PosterStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT unified_category,
			COUNT(*),
			COALESCE(SUM(CASE WHEN poster_file IS NOT NULL AND poster_file != '' THEN 1 ELSE 0 END), 0)
		FROM releases
		GROUP BY unified_category
		ORDER BY unified_category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count releases: %w", err)
	}
	defer rows.Close()

	var out []PosterStats
	for rows.Next() {
		var (
			st      PosterStats
			unified string
		)
		if err := rows.Scan(&unified, &st.Total, &st.WithPoster); err != nil {
			return nil, err
		}
		st.Unified = categories.Unified(unified)
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpdateClassification stores the resolved std/spec ids, unified category
// and media type.
func (s *ReleaseStore) UpdateClassification(ctx context.Context, id int64, std, spec *int, unified categories.Unified, mediaType string) error {
	return s.execOne(ctx, id, `
		UPDATE releases
		SET std_category_id = ?, spec_category_id = ?, unified_category = ?, media_type = ?,
			updated_ts = CAST(strftime('%s', 'now') AS INTEGER)
		WHERE id = ?
	`, nullInt(std), nullInt(spec), string(unified), mediaType, id)
}

// UpdatePoster records a persisted poster for the release.
func (s *ReleaseStore) UpdatePoster(ctx context.Context, id int64, p PosterUpdate) error {
	if strings.TrimSpace(p.File) == "" {
		return errors.New("poster file is required")
	}
	now := time.Now().Unix()
	return s.execOne(ctx, id, `
		UPDATE releases
		SET poster_file = ?, poster_provider = ?, poster_provider_id = ?, poster_lang = ?, poster_size = ?,
			poster_updated_ts = ?, updated_ts = ?
		WHERE id = ?
	`, p.File, nullString(p.Provider), nullString(p.ProviderID), nullString(p.Lang), nullString(p.Size), now, now, id)
}

// UpdateExternalDetails sets the confirmed external id of a release.
func (s *ReleaseStore) UpdateExternalDetails(ctx context.Context, id int64, provider, providerID string) error {
	return s.execOne(ctx, id, `
		UPDATE releases
		SET ext_provider = ?, ext_provider_id = ?, updated_ts = CAST(strftime('%s', 'now') AS INTEGER)
		WHERE id = ?
	`, nullString(provider), nullString(providerID), id)
}

func (s *ReleaseStore) execOne(ctx context.Context, id int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update release %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReleaseNotFound
	}
	return nil
}

func parseCategoryIDs(raw string) []int {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func formatCategoryIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
