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
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Resource is the metadata of a file or folder.
type Resource struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Type      string    `json:"type"`
	MimeType  string    `json:"mime_type,omitempty"`
	MediaType string    `json:"media_type,omitempty"`
	Size      int64     `json:"size,omitempty"`
	MD5       string    `json:"md5,omitempty"`
	PublicKey string    `json:"public_key,omitempty"`
	PublicURL string    `json:"public_url,omitempty"`
	Preview   string    `json:"preview,omitempty"`
	Created   time.Time `json:"created,omitempty"`
	Modified  time.Time `json:"modified,omitempty"`
}

// Link is an href issued by the API: a signed download or upload URL, or an
// async operation handle.
type Link struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

// MetaOptions narrows a metadata request.
type MetaOptions struct {
	Fields      []string
	PreviewSize string // e.g. "S", "XL" or "800x"
	PreviewCrop bool
}

func (o MetaOptions) apply(req *resty.Request) {
	if len(o.Fields) > 0 {
		req.SetQueryParam("fields", strings.Join(o.Fields, ","))
	}
	if o.PreviewSize != "" {
		req.SetQueryParam("preview_size", o.PreviewSize)
	}
	if o.PreviewCrop {
		req.SetQueryParam("preview_crop", "true")
	}
}

// EnsureFolder creates a single folder. An existing folder is not an error.
func (c *Client) EnsureFolder(ctx context.Context, path string) error {
	resp, err := c.execute(ctx, "ensureFolder", http.MethodPut, "/resources", func(r *resty.Request) {
		r.SetQueryParam("path", path)
	})
	if err != nil {
		return err
	}
	switch resp.StatusCode() {
	case http.StatusCreated, http.StatusOK, http.StatusConflict:
		return nil
	}
	return newAPIError(resp)
}

// EnsureDirRecursive creates every folder of path from the root down.
func (c *Client) EnsureDirRecursive(ctx context.Context, path string) error {
	root := c.conf.RootMarker
	if !strings.HasPrefix(path, root) {
		return fmt.Errorf("%w: %q does not start with %q", ErrInvalidPath, path, root)
	}

	current := strings.TrimSuffix(root, "/")
	for _, segment := range strings.Split(strings.TrimPrefix(path, root), "/") {
		if segment == "" {
			continue
		}
		current += "/" + segment
		if err := c.EnsureFolder(ctx, current); err != nil {
			return err
		}
	}
	return nil
}

// GetUploadLink issues a short-lived upload URL for path.
func (c *Client) GetUploadLink(ctx context.Context, path string, overwrite bool) (*Link, error) {
	resp, err := c.execute(ctx, "getUploadLink", http.MethodGet, "/resources/upload", func(r *resty.Request) {
		r.SetQueryParam("path", path)
		r.SetQueryParam("overwrite", strconv.FormatBool(overwrite))
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, newAPIError(resp)
	}
	var link Link
	if err := decode(resp, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// Publish opens path for public access. Publishing twice is not an error.
func (c *Client) Publish(ctx context.Context, path string) error {
	resp, err := c.execute(ctx, "publish", http.MethodPut, "/resources/publish", func(r *resty.Request) {
		r.SetQueryParam("path", path)
	})
	if err != nil {
		return err
	}
	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated, http.StatusConflict:
		return nil
	}
	return newAPIError(resp)
}

// GetMeta fetches the metadata of a private resource.
func (c *Client) GetMeta(ctx context.Context, path string, opts MetaOptions) (*Resource, error) {
	return c.meta(ctx, "getMeta", "/resources", func(r *resty.Request) {
		r.SetQueryParam("path", path)
		opts.apply(r)
	})
}

// GetPublicMeta fetches the metadata of a published resource by its key.
func (c *Client) GetPublicMeta(ctx context.Context, publicKey string, opts MetaOptions) (*Resource, error) {
	return c.meta(ctx, "getPublicMeta", "/public/resources", func(r *resty.Request) {
		r.SetQueryParam("public_key", publicKey)
		opts.apply(r)
	})
}

func (c *Client) meta(ctx context.Context, op, url string, build func(*resty.Request)) (*Resource, error) {
	resp, err := c.execute(ctx, op, http.MethodGet, url, build)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, newAPIError(resp)
	}
	var res Resource
	if err := decode(resp, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetPublicDownloadHref issues a signed download URL for a published resource.
func (c *Client) GetPublicDownloadHref(ctx context.Context, publicKey string) (string, error) {
	return c.href(ctx, "getPublicDownloadHref", "/public/resources/download", func(r *resty.Request) {
		r.SetQueryParam("public_key", publicKey)
	})
}

// GetPrivateDownloadHref issues a signed download URL using the owner's credentials.
func (c *Client) GetPrivateDownloadHref(ctx context.Context, path string) (string, error) {
	return c.href(ctx, "getPrivateDownloadHref", "/resources/download", func(r *resty.Request) {
		r.SetQueryParam("path", path)
	})
}

func (c *Client) href(ctx context.Context, op, url string, build func(*resty.Request)) (string, error) {
	resp, err := c.execute(ctx, op, http.MethodGet, url, build)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", newAPIError(resp)
	}
	var link Link
	if err := decode(resp, &link); err != nil {
		return "", err
	}
	if link.Href == "" {
		return "", fmt.Errorf("clouddisk %s: empty href", op)
	}
	return link.Href, nil
}
