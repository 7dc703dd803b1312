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

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/citypress/newsroom/pkg/log"
	"github.com/citypress/newsroom/pkg/retry"
)

// Observer is notified after every API call with the operation name and the
// response status, 0 when no response was received.
type Observer func(op string, status int)

// Client talks to the cloud-disk REST API. It keeps no state between calls;
// every method hits the upstream.
type Client struct {
	conf     Conf
	api      *resty.Client
	transfer *resty.Client
	breaker  *gobreaker.CircuitBreaker
	clock    retry.Clock
	observe  Observer
}

type Option func(*Client)

// WithClock replaces the clock used by the operation poll loop.
func WithClock(clock retry.Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// WithObserver installs a per-call observer, typically a metrics recorder.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observe = o
		}
	}
}

// WithHTTPClient makes both the API and the transfer client use hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.api = resty.NewWithClient(hc)
		c.transfer = resty.NewWithClient(hc)
	}
}

func NewClient(conf Conf, opts ...Option) *Client {
	conf.SetDefaults()

	c := &Client{
		conf:     conf,
		api:      resty.New(),
		transfer: resty.New(),
		clock:    retry.RealClock(),
		observe:  func(string, int) {},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.api.
		SetBaseURL(conf.BaseURL).
		SetTimeout(conf.RequestTimeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	if conf.Token != "" {
		c.api.SetHeader("Authorization", "OAuth "+conf.Token)
	}

	// signed hrefs carry their own credentials; streaming bodies must not be
	// cut by a client timeout, the request context bounds them instead
	c.transfer.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	if conf.Breaker.Enabled {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "clouddisk",
			MaxRequests: conf.Breaker.MaxRequests,
			Interval:    conf.Breaker.Interval,
			Timeout:     conf.Breaker.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= conf.Breaker.MaxFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warnw("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return c
}

// RootMarker returns the configured root prefix, e.g. "disk:/".
func (c *Client) RootMarker() string {
	return c.conf.RootMarker
}

// execute runs one API call. Transport errors and 5xx responses are returned
// as errors and count against the breaker; other statuses are left to the caller.
func (c *Client) execute(ctx context.Context, op, method, url string, build func(*resty.Request)) (*resty.Response, error) {
	run := func() (*resty.Response, error) {
		req := c.api.R().SetContext(ctx)
		if build != nil {
			build(req)
		}
		resp, err := req.Execute(method, url)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, newAPIError(resp)
		}
		return resp, nil
	}

	var (
		resp *resty.Response
		err  error
	)
	if c.breaker == nil {
		resp, err = run()
	} else {
		var out interface{}
		out, err = c.breaker.Execute(func() (interface{}, error) {
			return run()
		})
		resp, _ = out.(*resty.Response)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}
	c.observe(op, status)

	if err != nil {
		return resp, fmt.Errorf("clouddisk %s: %w", op, err)
	}
	return resp, nil
}

func decode(resp *resty.Response, out interface{}) error {
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("clouddisk: decode response: %w", err)
	}
	return nil
}
