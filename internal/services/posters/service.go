// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package posters resolves, stores and caches release posters.
package posters

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/autobrr/marquee/internal/dbinterface"
	"github.com/autobrr/marquee/internal/matchcache"
	"github.com/autobrr/marquee/internal/matching"
	"github.com/autobrr/marquee/internal/models"
	"github.com/autobrr/marquee/internal/posterstore"
	"github.com/autobrr/marquee/pkg/categories"
	"github.com/autobrr/marquee/pkg/releases"
)

// Outcome statuses follow HTTP codes so API layers can pass them through.
const (
	StatusOK        = 200
	StatusNotFound  = 404
	StatusCancelled = 499
	StatusInternal  = 500
)

const (
	DefaultMissTTL     = 10 * time.Minute
	DefaultConcurrency = 4
)

// Outcome is the result of one poster fetch. Fetches never return an error
// value; failures are described here.
type Outcome struct {
	OK        bool
	Status    int
	Provider  string
	Err       error
	FromCache bool
}

// Matcher resolves a subject to a poster.
type Matcher interface {
	Match(ctx context.Context, s matching.Subject) (*matching.Match, error)
}

// Recorder observes finished fetches.
type Recorder interface {
	FetchOutcome(status int, provider string, fromCache bool)
}

type nopRecorder struct{}

func (nopRecorder) FetchOutcome(int, string, bool) {}

type Config struct {
	// PreferredLang is the poster language asked of providers, e.g. "fr".
	PreferredLang string
	// MissTTL is how long a fingerprint whose waterfall missed is not retried.
	MissTTL  time.Duration
	Recorder Recorder
	Parser   *releases.Parser
}

type Service struct {
	db        dbinterface.TxBeginner
	releases  *models.ReleaseStore
	overrides *models.CategoryOverrideStore
	cache     *matchcache.Cache
	store     *posterstore.Store
	matcher   Matcher
	parser    *releases.Parser
	recorder  Recorder

	preferredLang string

	misses *ttlcache.Cache[string, struct{}]
	group  singleflight.Group
}

// resolved is the shared result of one waterfall run for a fingerprint.
type resolved struct {
	update models.PosterUpdate
}

func New(db dbinterface.TxBeginner, store *posterstore.Store, matcher Matcher, cfg Config) *Service {
	if cfg.MissTTL <= 0 {
		cfg.MissTTL = DefaultMissTTL
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Parser == nil {
		cfg.Parser = releases.NewDefaultParser()
	}

	return &Service{
		db:            db,
		releases:      models.NewReleaseStore(db),
		overrides:     models.NewCategoryOverrideStore(db),
		cache:         matchcache.New(db),
		store:         store,
		matcher:       matcher,
		parser:        cfg.Parser,
		recorder:      cfg.Recorder,
		preferredLang: cfg.PreferredLang,
		misses:        ttlcache.New(ttlcache.Options[string, struct{}]{}.SetDefaultTTL(cfg.MissTTL)),
	}
}

func cancelled(err error) Outcome {
	return Outcome{Status: StatusCancelled, Err: err}
}

func notFound(err error) Outcome {
	return Outcome{Status: StatusNotFound, Err: err}
}

// failure maps err onto an outcome, preferring cancellation when ctx is done.
func failure(ctx context.Context, err error) Outcome {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return cancelled(ctxErr)
	}
	switch {
	case isCancellation(err):
		return cancelled(err)
	case errors.Is(err, matching.ErrNoMatch), errors.Is(err, models.ErrReleaseNotFound):
		return notFound(err)
	default:
		return Outcome{Status: StatusInternal, Err: err}
	}
}

// FetchPoster makes sure the release has a poster. With skipIfExists a
// release that already has one is left alone. A cached match for the same
// subject is reused without calling any provider.
func (s *Service) FetchPoster(ctx context.Context, releaseID int64, skipIfExists bool) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int64("release_id", releaseID).Interface("panic", r).Msg("[POSTERS] Fetch panicked")
			out = Outcome{Status: StatusInternal, Err: fmt.Errorf("poster fetch panicked: %v", r)}
		}
		s.recorder.FetchOutcome(out.Status, out.Provider, out.FromCache)
	}()

	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}

	release, err := s.releases.GetForPoster(ctx, releaseID)
	if err != nil {
		return failure(ctx, err)
	}

	if skipIfExists && release.HasPoster() {
		return Outcome{OK: true, Status: StatusOK, Provider: release.PosterProvider}
	}

	// The fingerprint is derived from the stored media type, so unclassified
	// releases are classified first to keep it reproducible.
	if release.MediaType == "" || release.MediaType == categories.MediaOther {
		if release, err = s.classify(ctx, release); err != nil {
			return failure(ctx, err)
		}
	}

	fp := matchcache.FingerprintForRelease(release)

	if hit, ok := s.fromCache(ctx, fp); ok {
		if err := s.releases.UpdatePoster(ctx, release.ID, hit); err != nil {
			return failure(ctx, fmt.Errorf("failed to reuse cached poster: %w", err))
		}
		log.Debug().Int64("release_id", release.ID).Str("fingerprint", fp).Str("provider", hit.Provider).Msg("[POSTERS] Reused cached match")
		return Outcome{OK: true, Status: StatusOK, Provider: hit.Provider, FromCache: true}
	}

	if _, missed := s.misses.Get(fp); missed {
		return notFound(fmt.Errorf("%w: recently missed", matching.ErrNoMatch))
	}

	// Concurrent fetches for the same subject share one waterfall run. The
	// caller that runs it also writes its own release inside the transaction.
	// Each caller waits on its own context, and a follower whose leader was
	// cancelled starts a fresh run.
	for {
		ran := false
		ch := s.group.DoChan(fp, func() (any, error) {
			ran = true
			return s.resolve(ctx, release, fp)
		})

		var r singleflight.Result
		select {
		case <-ctx.Done():
			return cancelled(ctx.Err())
		case r = <-ch:
		}

		if r.Err != nil {
			if !ran && ctx.Err() == nil && isCancellation(r.Err) {
				log.Debug().Int64("release_id", release.ID).Str("fingerprint", fp).Msg("[POSTERS] Shared fetch was cancelled, retrying")
				continue
			}
			if errors.Is(r.Err, matching.ErrNoMatch) {
				s.misses.Set(fp, struct{}{}, ttlcache.DefaultTTL)
			}
			return failure(ctx, r.Err)
		}

		res := r.Val.(*resolved)
		if !ran {
			if err := s.releases.UpdatePoster(ctx, release.ID, res.update); err != nil {
				return failure(ctx, fmt.Errorf("failed to apply shared poster: %w", err))
			}
		}
		return Outcome{OK: true, Status: StatusOK, Provider: res.update.Provider}
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// fromCache returns the poster of a cached match whose file is still on disk.
func (s *Service) fromCache(ctx context.Context, fp string) (models.PosterUpdate, bool) {
	m, ok := s.cache.TryGet(ctx, fp)
	if !ok || m.PosterFile == "" {
		return models.PosterUpdate{}, false
	}
	if !s.store.Exists(m.PosterFile) {
		log.Debug().Str("fingerprint", fp).Str("file", m.PosterFile).Msg("[POSTERS] Cached poster file is gone, resolving again")
		return models.PosterUpdate{}, false
	}
	return models.PosterUpdate{
		File:       m.PosterFile,
		Provider:   m.PosterProvider,
		ProviderID: m.PosterProviderID,
		Lang:       m.PosterLang,
		Size:       m.PosterSize,
	}, true
}

func (s *Service) resolve(ctx context.Context, release *models.Release, fp string) (*resolved, error) {
	subject := s.subjectFor(release)

	m, err := s.matcher.Match(ctx, subject)
	if err != nil {
		return nil, err
	}

	info, err := posterstore.Inspect(m.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %s returned an unusable image: %v", matching.ErrNoMatch, m.Provider, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := posterstore.NameFor(fp, info.Format)
	if _, err := s.store.Save(ctx, name, m.Image); err != nil {
		return nil, fmt.Errorf("failed to save poster: %w", err)
	}

	size := m.Poster.Size
	if size == "" {
		size = strconv.Itoa(info.Width) + "x" + strconv.Itoa(info.Height)
	}
	update := models.PosterUpdate{
		File:       name,
		Provider:   m.Provider,
		ProviderID: m.ProviderID,
		Lang:       m.Poster.Lang,
		Size:       size,
	}

	if err := s.commit(ctx, release, fp, m, update); err != nil {
		if rmErr := s.store.Remove(name); rmErr != nil {
			log.Warn().Err(rmErr).Str("file", name).Msg("[POSTERS] Failed to remove poster after aborted fetch")
		}
		return nil, err
	}

	log.Info().
		Int64("release_id", release.ID).
		Str("fingerprint", fp).
		Str("provider", m.Provider).
		Str("source", m.Source).
		Float64("confidence", m.Confidence).
		Msg("[POSTERS] Stored poster")

	return &resolved{update: update}, nil
}

// commit writes the release poster and the cache row in one transaction.
func (s *Service) commit(ctx context.Context, release *models.Release, fp string, m *matching.Match, update models.PosterUpdate) error {
	return dbinterface.WithTx(ctx, s.db, func(tx dbinterface.TxQuerier) error {
		if err := s.releases.WithQuerier(tx).UpdatePoster(ctx, release.ID, update); err != nil {
			return fmt.Errorf("failed to update release poster: %w", err)
		}

		confidence := m.Confidence
		if err := s.cache.WithQuerier(tx).Upsert(ctx, models.PosterMatchUpsert{
			Fingerprint:      fp,
			MediaType:        matchcache.SubjectMediaType(release),
			NormalizedTitle:  matchcache.SubjectTitle(release),
			Year:             release.Year,
			IDs:              m.IDs,
			Confidence:       &confidence,
			MatchSource:      m.Source,
			PosterFile:       update.File,
			PosterProvider:   update.Provider,
			PosterProviderID: update.ProviderID,
			PosterLang:       update.Lang,
			PosterSize:       update.Size,
			Now:              time.Now(),
		}); err != nil {
			return fmt.Errorf("failed to cache poster match: %w", err)
		}
		return nil
	})
}

func (s *Service) subjectFor(release *models.Release) matching.Subject {
	hints := s.parser.Hints(release.Title)

	subject := matching.Subject{
		ReleaseID:       release.ID,
		Title:           hints.Title,
		NormalizedTitle: matchcache.SubjectTitle(release),
		Year:            hints.Year,
		Season:          hints.Season,
		Episode:         hints.Episode,
		Artist:          hints.Artist,
		MediaType:       matchcache.SubjectMediaType(release),
		Category:        release.UnifiedCategory,
		PreferredLang:   s.preferredLang,
	}
	if release.Year != nil {
		subject.Year = *release.Year
	}
	if release.ExternalProvider != "" && release.ExternalProviderID != "" {
		subject.IDs = map[string]string{release.ExternalProvider: release.ExternalProviderID}
	}
	return subject
}

// FetchMany fetches posters for ids with at most concurrency fetches in
// flight. Outcomes are returned in the order of ids.
func (s *Service) FetchMany(ctx context.Context, ids []int64, concurrency int, skipIfExists bool) []Outcome {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	outcomes := make([]Outcome, len(ids))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			outcomes[i] = s.FetchPoster(ctx, id, skipIfExists)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// ApplyExternalCorrection records a confirmed external id for the release
// and drops the cached match for its subject, so the stale pairing is not
// served again.
func (s *Service) ApplyExternalCorrection(ctx context.Context, releaseID int64, provider, providerID string) error {
	var release *models.Release
	err := dbinterface.WithTx(ctx, s.db, func(tx dbinterface.TxQuerier) error {
		store := s.releases.WithQuerier(tx)
		if err := store.UpdateExternalDetails(ctx, releaseID, provider, providerID); err != nil {
			return err
		}
		var err error
		if release, err = store.Get(ctx, releaseID); err != nil {
			return err
		}
		if _, err := s.cache.WithQuerier(tx).Invalidate(ctx, release); err != nil {
			return fmt.Errorf("failed to invalidate poster match: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.misses.Delete(matchcache.FingerprintForRelease(release))

	log.Info().Int64("release_id", releaseID).Str("provider", provider).Str("provider_id", providerID).Msg("[POSTERS] Applied external id correction")
	return nil
}

// Invalidate drops the cached match for the release's current subject
// without touching its external ids. It reports whether a row was removed.
func (s *Service) Invalidate(ctx context.Context, releaseID int64) (bool, error) {
	release, err := s.releases.Get(ctx, releaseID)
	if err != nil {
		return false, err
	}
	deleted, err := s.cache.Invalidate(ctx, release)
	if err != nil {
		return false, fmt.Errorf("failed to invalidate poster match: %w", err)
	}
	s.misses.Delete(matchcache.FingerprintForRelease(release))
	return deleted, nil
}

// PosterSize returns the size in bytes of a stored poster file.
func (s *Service) PosterSize(name string) (int64, error) {
	return s.store.Size(name)
}
