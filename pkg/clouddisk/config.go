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

package clouddisk

import "time"

const (
	DefaultBaseURL    = "https://cloud-api.yandex.net/v1/disk"
	DefaultRootMarker = "disk:/"
)

// Conf configures the cloud-disk client.
type Conf struct {
	BaseURL        string
	Token          string // OAuth token sent on API calls, never on signed hrefs
	RootMarker     string
	RequestTimeout time.Duration
	PollInterval   time.Duration // async operation poll interval
	PollTimeout    time.Duration // upper bound for one async operation
	Breaker        BreakerConf
}

// BreakerConf configures the circuit breaker guarding API calls.
type BreakerConf struct {
	Enabled     bool
	MaxFailures uint32        // consecutive failures that open the breaker
	MaxRequests uint32        // probes allowed while half-open
	Interval    time.Duration // closed-state counter reset period
	OpenTimeout time.Duration // time spent open before probing
}

func (c *Conf) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.RootMarker == "" {
		c.RootMarker = DefaultRootMarker
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 15 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 400 * time.Millisecond
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 15 * time.Second
	}
	if c.Breaker.MaxFailures == 0 {
		c.Breaker.MaxFailures = 5
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = 1
	}
	if c.Breaker.Interval <= 0 {
		c.Breaker.Interval = time.Minute
	}
	if c.Breaker.OpenTimeout <= 0 {
		c.Breaker.OpenTimeout = 30 * time.Second
	}
}
