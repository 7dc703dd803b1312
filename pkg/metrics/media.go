// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Link cache tiers and lookup results.
const (
	TierMemory    = "memory"
	TierPersisted = "persisted"

	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Fallback kinds.
const (
	FallbackPreview = "preview_to_original"
	FallbackRefresh = "refresh_retry"
	FallbackPrivate = "private_href"
)

// MediaMetrics groups the collectors of the media delivery path. A nil
// *MediaMetrics records nothing.
type MediaMetrics struct {
	CacheLookups     *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
	Fallbacks        *prometheus.CounterVec
	ResolveSeconds   prometheus.Histogram
}

// NewMediaMetrics creates the collectors without registering them.
func NewMediaMetrics() *MediaMetrics {
	return &MediaMetrics{
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsroom_link_cache_lookups_total",
				Help: "Total number of download link lookups by cache tier and result",
			},
			[]string{"tier", "result"},
		),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsroom_upstream_requests_total",
				Help: "Total number of cloud disk API requests by operation and status",
			},
			[]string{"op", "status"},
		),
		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsroom_media_fallbacks_total",
				Help: "Total number of delivery fallbacks by kind",
			},
			[]string{"kind"},
		),
		ResolveSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "newsroom_media_resolve_seconds",
				Help:    "Duration of download link resolution in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
			},
		),
	}
}

// Register adds all media collectors to registry.
func (m *MediaMetrics) Register(registry prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.CacheLookups, m.UpstreamRequests, m.Fallbacks, m.ResolveSeconds} {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *MediaMetrics) CacheLookup(tier string, hit bool) {
	if m == nil {
		return
	}
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	m.CacheLookups.WithLabelValues(tier, result).Inc()
}

// ObserveUpstream counts one cloud disk API call. Status 0 means the call
// failed before a response arrived.
func (m *MediaMetrics) ObserveUpstream(op string, status int) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(op, strconv.Itoa(status)).Inc()
}

func (m *MediaMetrics) Fallback(kind string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(kind).Inc()
}

func (m *MediaMetrics) ObserveResolve(d time.Duration) {
	if m == nil {
		return
	}
	m.ResolveSeconds.Observe(d.Seconds())
}
