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
	"fmt"
	"io"
	"net/http"
)

// Download is an open byte stream from a signed href. Body must be closed.
type Download struct {
	StatusCode    int
	Header        http.Header
	ContentLength int64 // -1 when unknown
	Body          io.ReadCloser
}

// Close releases the underlying connection.
func (d *Download) Close() error {
	if d == nil || d.Body == nil {
		return nil
	}
	return d.Body.Close()
}

// PutBytes uploads payload to an href obtained from GetUploadLink.
func (c *Client) PutBytes(ctx context.Context, uploadHref string, payload []byte) error {
	resp, err := c.transfer.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(payload).
		Put(uploadHref)
	if err != nil {
		c.observe("putBytes", 0)
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	c.observe("putBytes", resp.StatusCode())
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: status %d", ErrUploadFailed, resp.StatusCode())
	}
	return nil
}

// Download opens href for reading. rangeHeader, when set, is forwarded as is.
// Any response status is returned to the caller; only transport failures are errors.
func (c *Client) Download(ctx context.Context, href, rangeHeader string) (*Download, error) {
	req := c.transfer.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if rangeHeader != "" {
		req.SetHeader("Range", rangeHeader)
	}

	resp, err := req.Get(href)
	if err != nil {
		c.observe("download", 0)
		return nil, fmt.Errorf("clouddisk download: %w", err)
	}
	c.observe("download", resp.StatusCode())

	raw := resp.RawResponse
	return &Download{
		StatusCode:    raw.StatusCode,
		Header:        raw.Header,
		ContentLength: raw.ContentLength,
		Body:          resp.RawBody(),
	}, nil
}
