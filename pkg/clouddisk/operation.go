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
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/citypress/newsroom/pkg/retry"
)

// Operation statuses reported by the API.
const (
	OperationSuccess    = "success"
	OperationFailed     = "failed"
	OperationInProgress = "in-progress"
)

var errOperationPending = errors.New("operation in progress")

type operationStatus struct {
	Status string `json:"status"`
}

// WaitOperation polls an async operation handle until it succeeds, fails or
// the poll timeout elapses.
func (c *Client) WaitOperation(ctx context.Context, href string) error {
	pollCtx, cancel := context.WithTimeout(ctx, c.conf.PollTimeout)
	defer cancel()

	poll := retry.Policy{
		Budget:  c.conf.PollTimeout,
		Backoff: retry.Constant(c.conf.PollInterval),
		Retryable: func(err error) bool {
			return errors.Is(err, errOperationPending)
		},
		Clock: c.clock,
	}
	err := poll.Do(pollCtx, func(ctx context.Context) error {
		resp, err := c.execute(ctx, "waitOperation", http.MethodGet, href, nil)
		if err != nil {
			return err
		}
		if resp.StatusCode() != http.StatusOK {
			return newAPIError(resp)
		}
		var op operationStatus
		if err := decode(resp, &op); err != nil {
			return err
		}
		switch op.Status {
		case OperationSuccess:
			return nil
		case OperationFailed:
			return fmt.Errorf("%w: %s", ErrOperationFailed, href)
		default:
			return errOperationPending
		}
	})

	timedOut := errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
	if errors.Is(err, errOperationPending) || timedOut {
		return fmt.Errorf("%w after %s: %s", ErrOperationTimeout, c.conf.PollTimeout, href)
	}
	return err
}

// DeleteResource removes path, waiting for the operation when the API
// answers asynchronously. A resource that is already gone is not an error.
func (c *Client) DeleteResource(ctx context.Context, path string, permanently bool) error {
	resp, err := c.execute(ctx, "deleteResource", http.MethodDelete, "/resources", func(r *resty.Request) {
		r.SetQueryParam("path", path)
		r.SetQueryParam("permanently", strconv.FormatBool(permanently))
	})
	if err != nil {
		return err
	}
	switch resp.StatusCode() {
	case http.StatusNoContent, http.StatusNotFound, http.StatusGone:
		return nil
	case http.StatusAccepted:
		return c.waitAccepted(ctx, resp)
	}
	return newAPIError(resp)
}

// MoveResource moves from to to, creating the parent folders of to first.
func (c *Client) MoveResource(ctx context.Context, from, to string, overwrite bool) error {
	if err := c.EnsureDirRecursive(ctx, c.parentDir(to)); err != nil {
		return err
	}

	resp, err := c.execute(ctx, "moveResource", http.MethodPost, "/resources/move", func(r *resty.Request) {
		r.SetQueryParam("from", from)
		r.SetQueryParam("path", to)
		r.SetQueryParam("overwrite", strconv.FormatBool(overwrite))
	})
	if err != nil {
		return err
	}
	switch resp.StatusCode() {
	case http.StatusCreated, http.StatusOK:
		return nil
	case http.StatusAccepted:
		return c.waitAccepted(ctx, resp)
	}
	return newAPIError(resp)
}

func (c *Client) waitAccepted(ctx context.Context, resp *resty.Response) error {
	var link Link
	if err := decode(resp, &link); err != nil {
		return err
	}
	if link.Href == "" {
		return fmt.Errorf("%w: accepted without operation href", ErrOperationFailed)
	}
	return c.WaitOperation(ctx, link.Href)
}

func (c *Client) parentDir(path string) string {
	root := c.conf.RootMarker
	idx := strings.LastIndex(path, "/")
	if idx < len(root) {
		return root
	}
	return path[:idx]
}
