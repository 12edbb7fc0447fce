// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/marquee/internal/config"
	"github.com/autobrr/marquee/internal/database"
	"github.com/autobrr/marquee/internal/domain"
	"github.com/autobrr/marquee/internal/logger"
	"github.com/autobrr/marquee/internal/matchcache"
	"github.com/autobrr/marquee/internal/matching"
	"github.com/autobrr/marquee/internal/metrics"
	"github.com/autobrr/marquee/internal/models"
	"github.com/autobrr/marquee/internal/posterstore"
	"github.com/autobrr/marquee/internal/providers/httpx"
	"github.com/autobrr/marquee/internal/services/notifications"
	"github.com/autobrr/marquee/internal/services/posters"
)

// app holds everything a command needs. Parts are opened on first use so
// commands like categories never touch the database.
type app struct {
	configPath *string

	cfg     *config.AppConfig
	db      *database.DB
	metrics *metrics.Manager
	service *posters.Service
	http    *httpx.Client

	notifierOnce bool
	notifier     *notifications.Service
}

func (a *app) Config() (*domain.Config, error) {
	if a.cfg != nil {
		return a.cfg.Current(), nil
	}
	path := ""
	if a.configPath != nil {
		path = *a.configPath
	}
	cfg, err := config.New(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not load config")
	}
	if err := logger.Setup(cfg.Current()); err != nil {
		return nil, errors.Wrap(err, "could not set up logging")
	}
	cfg.Watch(func(c *domain.Config) {
		logger.SetLevel(c.LogLevel)
	})
	a.cfg = cfg
	return cfg.Current(), nil
}

func (a *app) DB() (*database.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	if _, err := a.Config(); err != nil {
		return nil, err
	}
	db, err := database.New(a.cfg.GetDatabasePath())
	if err != nil {
		return nil, errors.Wrap(err, "could not open database")
	}
	a.db = db
	return db, nil
}

// HTTP returns the provider HTTP client shared by every catalog, with one
// rate limiter keyed by provider.
func (a *app) HTTP() (*httpx.Client, error) {
	if a.http != nil {
		return a.http, nil
	}
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	limiter := httpx.NewRateLimiter(
		time.Duration(cfg.ProviderIntervalMs)*time.Millisecond,
		time.Duration(cfg.RateLimitMaxWait)*time.Second,
	)
	a.http = httpx.New(
		httpx.WithTimeout(time.Duration(cfg.HTTPTimeout)*time.Second),
		httpx.WithRateLimiter(limiter),
	)
	configureLimiter(limiter)
	return a.http, nil
}

func (a *app) Metrics() (*metrics.Manager, error) {
	if a.metrics != nil {
		return a.metrics, nil
	}
	db, err := a.DB()
	if err != nil {
		return nil, err
	}
	a.metrics = metrics.NewManager(models.NewReleaseStore(db), matchcache.New(db))
	return a.metrics, nil
}

func (a *app) Service() (*posters.Service, error) {
	if a.service != nil {
		return a.service, nil
	}
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	db, err := a.DB()
	if err != nil {
		return nil, err
	}
	m, err := a.Metrics()
	if err != nil {
		return nil, err
	}
	client, err := a.HTTP()
	if err != nil {
		return nil, err
	}

	store, err := posterstore.New(a.cfg.GetPosterDir())
	if err != nil {
		return nil, errors.Wrap(err, "could not open poster directory")
	}
	providers := buildProviders(cfg, client)
	matcher := matching.New(providers, matching.Options{
		Fetcher:       client,
		ValidateImage: posterstore.Validate,
		Recorder:      m.Posters(),
		MinConfidence: cfg.MinConfidence,
	})

	a.service = posters.New(db, store, matcher, posters.Config{
		PreferredLang: cfg.PreferredLang,
		Recorder:      m.Posters(),
	})
	return a.service, nil
}

// Notify sends event to the configured notification targets, if any.
func (a *app) Notify(ctx context.Context, event notifications.Event) {
	if !a.notifierOnce {
		a.notifierOnce = true
		cfg, err := a.Config()
		if err != nil {
			return
		}
		var valid []string
		for _, u := range cfg.NotifyURLs {
			if err := notifications.ValidateURL(u); err != nil {
				log.Warn().Err(err).Msg("skipping invalid notification url")
				continue
			}
			valid = append(valid, u)
		}
		a.notifier = notifications.NewService(valid, log.Logger)
	}
	a.notifier.Notify(ctx, event)
}

// WriteMetrics dumps the registry when a textfile path is configured.
func (a *app) WriteMetrics() {
	if a.cfg == nil || a.metrics == nil {
		return
	}
	path := a.cfg.Current().MetricsTextfile
	if path == "" {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		log.Warn().Err(err).Msg("could not write metrics textfile")
	}
}

func (a *app) Close() error {
	if a.db == nil {
		return logger.Close()
	}
	err := a.db.Close()
	a.db = nil
	if lerr := logger.Close(); err == nil {
		err = lerr
	}
	return err
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
