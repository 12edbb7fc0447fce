// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/marquee/internal/database"
	"github.com/autobrr/marquee/internal/metrics/collector"
)

type Manager struct {
	registry        *prometheus.Registry
	storeCollector  *StoreCollector
	posterCollector *collector.PosterCollector
}

// NewManager builds a registry with runtime, database and poster metrics.
// Either source may be nil, in which case its gauges are skipped.
func NewManager(releases ReleaseStatsSource, matches MatchCountSource) *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(database.NewMetricsCollector())

	storeCollector := NewStoreCollector(releases, matches)
	registry.MustRegister(storeCollector)

	posterCollector := collector.NewPosterCollector(registry)

	log.Debug().Msg("Metrics manager initialized")

	return &Manager{
		registry:        registry,
		storeCollector:  storeCollector,
		posterCollector: posterCollector,
	}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

// Posters returns the recorder handed to the matcher and poster service.
func (m *Manager) Posters() *collector.PosterCollector {
	return m.posterCollector
}

// WriteTextfile dumps the registry in the node exporter textfile format.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
