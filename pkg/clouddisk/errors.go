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
	"errors"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

var (
	// ErrInvalidPath is returned for paths outside the root marker.
	ErrInvalidPath = errors.New("clouddisk: invalid path")
	// ErrUploadFailed is returned when the byte transfer is not accepted.
	ErrUploadFailed = errors.New("clouddisk: upload failed")
	// ErrOperationTimeout is returned when an async operation outlives the poll timeout.
	ErrOperationTimeout = errors.New("clouddisk: operation timeout")
	// ErrOperationFailed is returned when an async operation reports failure.
	ErrOperationFailed = errors.New("clouddisk: operation failed")
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("clouddisk: upstream unavailable")
)

// APIError is a non-success response of the disk API.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("clouddisk: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("clouddisk: status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err carries an APIError with one of codes.
func IsStatus(err error, codes ...int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.StatusCode == code {
			return true
		}
	}
	return false
}

func newAPIError(resp *resty.Response) *APIError {
	e := &APIError{}
	if body := resp.Body(); len(body) > 0 {
		_ = sonic.Unmarshal(body, e)
	}
	e.StatusCode = resp.StatusCode()
	if e.Message == "" {
		e.Message = http.StatusText(e.StatusCode)
	}
	return e
}
