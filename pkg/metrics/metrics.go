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
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/citypress/newsroom/pkg/log"
	"github.com/citypress/newsroom/pkg/safe"
)

// MetricsConfig configures the scrape listener. It is separate from the
// public listener so media traffic and scrapes never share a port.
type MetricsConfig struct {
	Enable bool
	Host   string
	Port   int
	Path   string
}

func (c *MetricsConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 9090
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

func (c *MetricsConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server owns the process registry and the scrape listener.
type Server struct {
	config   MetricsConfig
	registry *prometheus.Registry

	mu     sync.Mutex
	server *http.Server
	addr   net.Addr
}

func NewServer(config MetricsConfig) *Server {
	config.SetDefaults()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	return &Server{config: config, registry: registry}
}

// Registry is where collectors of the service register.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the registry in the exposition format.
func (s *Server) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorLog:          promErrorLog{},
	})
}

// Start binds the listener before returning, so a taken port is reported to
// the caller, then serves in the background.
func (s *Server) Start() error {
	if !s.config.Enable {
		log.Info("metrics listener disabled")
		return nil
	}

	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(s.config.Path, s.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	s.mu.Lock()
	s.server, s.addr = srv, ln.Addr()
	s.mu.Unlock()

	safe.Go(func() {
		log.Infow("metrics listener started", "address", ln.Addr().String(), "path", s.config.Path)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics listener failed", "error", err)
		}
	})
	return nil
}

// Addr is the bound address, nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

type promErrorLog struct{}

func (promErrorLog) Println(v ...interface{}) {
	log.Warn(append([]interface{}{"metrics handler: "}, v...)...)
}
