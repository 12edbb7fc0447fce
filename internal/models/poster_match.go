// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/autobrr/marquee/internal/dbinterface"
)

var (
	ErrPosterMatchNotFound = errors.New("poster match not found")
	ErrPosterMatchCorrupt  = errors.New("poster match row is corrupt")
)

// PosterMatch is one cached resolution, shared by every release with the
// same fingerprint.
type PosterMatch struct {
	Fingerprint      string            `json:"fingerprint"`
	MediaType        string            `json:"mediaType"`
	NormalizedTitle  string            `json:"normalizedTitle"`
	Year             *int              `json:"year,omitempty"`
	Season           *int              `json:"season,omitempty"`
	Episode          *int              `json:"episode,omitempty"`
	IDs              map[string]string `json:"ids,omitempty"`
	Confidence       float64           `json:"confidence"`
	MatchSource      string            `json:"matchSource,omitempty"`
	PosterFile       string            `json:"posterFile,omitempty"`
	PosterProvider   string            `json:"posterProvider,omitempty"`
	PosterProviderID string            `json:"posterProviderId,omitempty"`
	PosterLang       string            `json:"posterLang,omitempty"`
	PosterSize       string            `json:"posterSize,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	LastSeenAt       time.Time         `json:"lastSeenAt"`
	LastAttemptAt    time.Time         `json:"lastAttemptAt"`
	LastError        string            `json:"lastError,omitempty"`
}

// PosterMatchUpsert is a write against the cache. Blank strings and nil
// pointers mean "not provided" and keep whatever is stored. A nil or zero
// Confidence never replaces a stored positive confidence.
type PosterMatchUpsert struct {
	Fingerprint      string
	MediaType        string
	NormalizedTitle  string
	Year             *int
	Season           *int
	Episode          *int
	IDs              map[string]string
	Confidence       *float64
	MatchSource      string
	PosterFile       string
	PosterProvider   string
	PosterProviderID string
	PosterLang       string
	PosterSize       string
	LastError        string
	Now              time.Time
}

type PosterMatchStore struct {
	db dbinterface.Querier
}

func NewPosterMatchStore(db dbinterface.Querier) *PosterMatchStore {
	return &PosterMatchStore{db: db}
}

// WithQuerier returns a store bound to q, typically an open transaction.
func (s *PosterMatchStore) WithQuerier(q dbinterface.Querier) *PosterMatchStore {
	return &PosterMatchStore{db: q}
}

const posterMatchColumns = `
	fingerprint, media_type, normalized_title, year, season, episode, ids_json, confidence,
	match_source, poster_file, poster_provider, poster_provider_id, poster_lang, poster_size,
	created_ts, last_seen_ts, last_attempt_ts, last_error
`

func scanPosterMatch(row rowScanner) (*PosterMatch, error) {
	var (
		m                                        PosterMatch
		year, season, episode                    sql.NullInt64
		idsJSON, matchSource, lastError          sql.NullString
		posterFile, posterProvider, posterProvID sql.NullString
		posterLang, posterSize                   sql.NullString
		createdTs, lastSeenTs, lastAttemptTs     int64
	)

	if err := row.Scan(
		&m.Fingerprint, &m.MediaType, &m.NormalizedTitle, &year, &season, &episode, &idsJSON, &m.Confidence,
		&matchSource, &posterFile, &posterProvider, &posterProvID, &posterLang, &posterSize,
		&createdTs, &lastSeenTs, &lastAttemptTs, &lastError,
	); err != nil {
		return nil, err
	}

	if idsJSON.Valid && strings.TrimSpace(idsJSON.String) != "" {
		if err := json.Unmarshal([]byte(idsJSON.String), &m.IDs); err != nil {
			return nil, fmt.Errorf("%w: ids_json: %v", ErrPosterMatchCorrupt, err)
		}
	}

	m.Year = intFromNull(year)
	m.Season = intFromNull(season)
	m.Episode = intFromNull(episode)
	m.MatchSource = matchSource.String
	m.PosterFile = posterFile.String
	m.PosterProvider = posterProvider.String
	m.PosterProviderID = posterProvID.String
	m.PosterLang = posterLang.String
	m.PosterSize = posterSize.String
	m.LastError = lastError.String
	m.CreatedAt = time.Unix(createdTs, 0).UTC()
	m.LastSeenAt = time.Unix(lastSeenTs, 0).UTC()
	m.LastAttemptAt = time.Unix(lastAttemptTs, 0).UTC()

	return &m, nil
}

// Get returns the row for fingerprint. Rows that cannot be decoded return an
// error wrapping ErrPosterMatchCorrupt.
func (s *PosterMatchStore) Get(ctx context.Context, fingerprint string) (*PosterMatch, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+posterMatchColumns+` FROM poster_matches WHERE fingerprint = ?`, fingerprint)
	m, err := scanPosterMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPosterMatchNotFound
		}
		if errors.Is(err, ErrPosterMatchCorrupt) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPosterMatchCorrupt, err)
	}
	return m, nil
}

// Upsert merges u into the row for its fingerprint in one statement, so
// concurrent writers cannot lose each other's stronger values:
//   - poster_file is only replaced by a non-empty value
//   - confidence is only replaced by a positive value, the last one wins
//   - other columns keep their stored value when the incoming one is NULL
//   - created_ts is written once, last_seen_ts and last_attempt_ts always
func (s *PosterMatchStore) Upsert(ctx context.Context, u PosterMatchUpsert) error {
	if strings.TrimSpace(u.Fingerprint) == "" {
		return errors.New("fingerprint is required")
	}
	if strings.TrimSpace(u.MediaType) == "" {
		return errors.New("media type is required")
	}

	now := u.Now
	if now.IsZero() {
		now = time.Now()
	}
	ts := now.Unix()

	var confidence float64
	if u.Confidence != nil && *u.Confidence > 0 {
		confidence = *u.Confidence
	}

	var idsJSON sql.NullString
	if len(u.IDs) > 0 {
		raw, err := json.Marshal(u.IDs)
		if err != nil {
			return fmt.Errorf("failed to encode ids: %w", err)
		}
		idsJSON = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO poster_matches (
			fingerprint, media_type, normalized_title, year, season, episode, ids_json, confidence,
			match_source, poster_file, poster_provider, poster_provider_id, poster_lang, poster_size,
			created_ts, last_seen_ts, last_attempt_ts, last_error
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			media_type = excluded.media_type,
			normalized_title = CASE WHEN excluded.normalized_title <> '' THEN excluded.normalized_title ELSE poster_matches.normalized_title END,
			year = COALESCE(excluded.year, poster_matches.year),
			season = COALESCE(excluded.season, poster_matches.season),
			episode = COALESCE(excluded.episode, poster_matches.episode),
			ids_json = COALESCE(excluded.ids_json, poster_matches.ids_json),
			confidence = CASE WHEN excluded.confidence > 0 THEN excluded.confidence ELSE poster_matches.confidence END,
			match_source = COALESCE(excluded.match_source, poster_matches.match_source),
			poster_file = CASE WHEN excluded.poster_file IS NOT NULL AND excluded.poster_file <> '' THEN excluded.poster_file ELSE poster_matches.poster_file END,
			poster_provider = COALESCE(excluded.poster_provider, poster_matches.poster_provider),
			poster_provider_id = COALESCE(excluded.poster_provider_id, poster_matches.poster_provider_id),
			poster_lang = COALESCE(excluded.poster_lang, poster_matches.poster_lang),
			poster_size = COALESCE(excluded.poster_size, poster_matches.poster_size),
			last_seen_ts = excluded.last_seen_ts,
			last_attempt_ts = excluded.last_attempt_ts,
			last_error = COALESCE(excluded.last_error, poster_matches.last_error)
	`,
		u.Fingerprint, u.MediaType, strings.TrimSpace(u.NormalizedTitle),
		nullInt(u.Year), nullInt(u.Season), nullInt(u.Episode), idsJSON, confidence,
		nullString(u.MatchSource), nullString(u.PosterFile), nullString(u.PosterProvider),
		nullString(u.PosterProviderID), nullString(u.PosterLang), nullString(u.PosterSize),
		ts, ts, ts, nullString(u.LastError),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert poster match: %w", err)
	}
	return nil
}

// Delete removes the row for fingerprint. It reports whether a row existed.
func (s *PosterMatchStore) Delete(ctx context.Context, fingerprint string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM poster_matches WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return false, fmt.Errorf("failed to delete poster match: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// List returns rows ordered by most recently seen. Corrupt rows are skipped.
func (s *PosterMatchStore) List(ctx context.Context, limit int) ([]*PosterMatch, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+posterMatchColumns+`
		FROM poster_matches
		ORDER BY last_seen_ts DESC, fingerprint
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PosterMatch
	for rows.Next() {
		m, err := scanPosterMatch(rows)
		if err != nil {
			if errors.Is(err, ErrPosterMatchCorrupt) {
				continue
			}
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count returns the number of cached rows.
func (s *PosterMatchStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM poster_matches`).Scan(&n)
	return n, err
}
