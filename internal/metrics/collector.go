// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/marquee/internal/models"
)

// ReleaseStatsSource reports per category release and poster counts.
type ReleaseStatsSource interface {
	PosterStats(ctx context.Context) ([]models.PosterStats, error)
}

// MatchCountSource reports the number of cached poster matches.
type MatchCountSource interface {
	Count(ctx context.Context) (int, error)
}

// StoreCollector reads release and match cache gauges from the database on
// every scrape.
type StoreCollector struct {
	releases ReleaseStatsSource
	matches  MatchCountSource

	releasesTotalDesc      *prometheus.Desc
	releasesWithPosterDesc *prometheus.Desc
	posterMatchesDesc      *prometheus.Desc
}

func NewStoreCollector(releases ReleaseStatsSource, matches MatchCountSource) *StoreCollector {
	return &StoreCollector{
		releases: releases,
		matches:  matches,

		releasesTotalDesc: prometheus.NewDesc(
			"marquee_releases_total",
			"Number of ingested releases by unified category",
			[]string{"unified_category"},
			nil,
		),
		releasesWithPosterDesc: prometheus.NewDesc(
			"marquee_releases_with_poster",
			"Number of releases that have a poster by unified category",
			[]string{"unified_category"},
			nil,
		),
		posterMatchesDesc: prometheus.NewDesc(
			"marquee_poster_matches",
			"Number of cached poster matches",
			nil,
			nil,
		),
	}
}

func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.releasesTotalDesc
	ch <- c.releasesWithPosterDesc
	ch <- c.posterMatchesDesc
}

func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if c.releases != nil {
		stats, err := c.releases.PosterStats(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to get release stats for metrics")
		}
		for _, st := range stats {
			label := st.Unified.String()
			ch <- prometheus.MustNewConstMetric(c.releasesTotalDesc, prometheus.GaugeValue, float64(st.Total), label)
			ch <- prometheus.MustNewConstMetric(c.releasesWithPosterDesc, prometheus.GaugeValue, float64(st.WithPoster), label)
		}
	}

	if c.matches == nil {
		log.Debug().Msg("Match cache is nil, skipping poster match metrics")
		return
	}
	n, err := c.matches.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count poster matches for metrics")
		return
	}
	ch <- prometheus.MustNewConstMetric(c.posterMatchesDesc, prometheus.GaugeValue, float64(n))
}
