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
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaMetrics(t *testing.T) {
	server := NewMetricsServer(MetricsConfig{})
	m, err := ProvideMediaMetrics(server)
	require.NoError(t, err)

	m.CacheLookup(TierMemory, true)
	m.CacheLookup(TierMemory, false)
	m.CacheLookup(TierMemory, false)
	m.ObserveUpstream("publish", 409)
	m.Fallback(FallbackPreview)
	m.ObserveResolve(20 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(TierMemory, ResultHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(TierMemory, ResultMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("publish", "409")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues(FallbackPreview)))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "newsroom_link_cache_lookups_total")
	assert.Contains(t, string(body), "newsroom_media_resolve_seconds_bucket")
}

func TestMediaMetrics_DoubleRegister(t *testing.T) {
	server := NewMetricsServer(MetricsConfig{})
	_, err := ProvideMediaMetrics(server)
	require.NoError(t, err)
	_, err = ProvideMediaMetrics(server)
	assert.Error(t, err)
}

func TestMediaMetrics_Nil(t *testing.T) {
	var m *MediaMetrics
	assert.NotPanics(t, func() {
		m.CacheLookup(TierPersisted, true)
		m.ObserveUpstream("getMeta", 200)
		m.Fallback(FallbackRefresh)
		m.ObserveResolve(time.Second)
	})
}

func TestServer_Disabled(t *testing.T) {
	server := NewMetricsServer(MetricsConfig{})
	require.NoError(t, server.Start())
	assert.NoError(t, server.Stop(context.Background()))
}

func TestServer_StartServesRegistry(t *testing.T) {
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := probe.Addr().(*net.TCPAddr).Port
	require.NoError(t, probe.Close())

	server := NewMetricsServer(MetricsConfig{Enable: true, Host: "127.0.0.1", Port: port})
	require.NoError(t, server.Start())
	defer func() { _ = server.Stop(context.Background()) }()
	require.NotNil(t, server.Addr())

	resp, err := http.Get("http://" + server.Addr().String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestServer_PortTaken(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	server := NewMetricsServer(MetricsConfig{Enable: true, Host: "127.0.0.1", Port: taken.Addr().(*net.TCPAddr).Port})
	assert.Error(t, server.Start())
	assert.Nil(t, server.Addr())
}
