package collector

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PosterCollector counts poster fetches and the provider calls made for
// them. It satisfies both matching.Recorder and posters.Recorder.
type PosterCollector struct {
	FetchTotal        *prometheus.CounterVec
	ProviderCallTotal *prometheus.CounterVec
}

func NewPosterCollector(r *prometheus.Registry) *PosterCollector {
	m := &PosterCollector{
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marquee",
			Subsystem: "posters",
			Name:      "fetch_total",
			Help:      "Total number of poster fetches by status and provider",
		}, []string{"status", "provider", "from_cache"}),
		ProviderCallTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marquee",
			Subsystem: "posters",
			Name:      "provider_call_total",
			Help:      "Total number of provider lookups by outcome",
		}, []string{"provider", "outcome"}),
	}

	r.MustRegister(m.FetchTotal)
	r.MustRegister(m.ProviderCallTotal)
	return m
}

func (m *PosterCollector) FetchOutcome(status int, provider string, fromCache bool) {
	m.FetchTotal.With(prometheus.Labels{
		"status":     strconv.Itoa(status),
		"provider":   provider,
		"from_cache": strconv.FormatBool(fromCache),
	}).Inc()
}

func (m *PosterCollector) ProviderCall(provider, outcome string) {
	m.ProviderCallTotal.With(prometheus.Labels{
		"provider": provider,
		"outcome":  outcome,
	}).Inc()
}
