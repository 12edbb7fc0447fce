// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var txRollbackTotal atomic.Uint64

func recordRollback() {
	txRollbackTotal.Add(1)
}

type MetricsCollector struct {
	txRollbackDesc *prometheus.Desc
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		txRollbackDesc: prometheus.NewDesc(
			"marquee_db_tx_rollback_total",
			"Number of write transactions rolled back, e.g. after a cancelled or failed poster fetch",
			nil,
			nil,
		),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.txRollbackDesc
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(
		c.txRollbackDesc,
		prometheus.CounterValue,
		float64(txRollbackTotal.Load()),
	)
}
