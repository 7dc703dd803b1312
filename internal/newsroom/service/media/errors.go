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

package media

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned for unknown asset ids.
	ErrNotFound = errors.New("media: asset not found")
	// ErrPreviewNotSupported is returned when a size is requested for a non-image.
	ErrPreviewNotSupported = errors.New("media: preview size is only supported for images")
	// ErrPreviewUnavailable is returned when the provider has no preview for the size.
	ErrPreviewUnavailable = errors.New("media: preview unavailable")
	// ErrUpstreamRejected marks a signed href refused with 401 or 403.
	ErrUpstreamRejected = errors.New("media: upstream rejected href")
	// ErrUpstreamError covers every other upstream failure.
	ErrUpstreamError = errors.New("media: upstream error")
	// ErrInvalidUpload is returned for empty or oversized uploads.
	ErrInvalidUpload = errors.New("media: invalid upload")
)

// UpstreamStatusError is the final non-success status of a byte fetch.
type UpstreamStatusError struct {
	Status int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("media: upstream returned status %d", e.Status)
}

func (e *UpstreamStatusError) Is(target error) bool {
	switch target {
	case ErrUpstreamError:
		return true
	case ErrUpstreamRejected:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}
