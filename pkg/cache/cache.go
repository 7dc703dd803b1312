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

package cache

import (
	"context"
	"time"
)

// Backend names accepted in Conf.Backend.
const (
	BackendLRU       = "lru"
	BackendFastCache = "fastcache"
	BackendRedis     = "redis"
	BackendHybrid    = "hybrid"
)

const (
	defaultSize          = 50000
	defaultLocalMaxBytes = 32 * 1024 * 1024
	defaultKeyPrefix     = "newsroom:link:"
)

// Entry is a signed href together with the instant it stops being usable.
type Entry struct {
	Href      string    `json:"href"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid reports whether the entry can still be served at now.
func (e Entry) Valid(now time.Time) bool {
	return e.Href != "" && now.Before(e.ExpiresAt)
}

// Store keeps entries by key. Implementations are safe for concurrent use.
// Get may return entries that are already expired; callers decide validity.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Put(ctx context.Context, key string, entry Entry)
	Delete(ctx context.Context, keys ...string)
}

// Conf selects and sizes the store backend.
type Conf struct {
	Backend       string // lru, fastcache, redis or hybrid
	Size          int    // max entries for the lru backend
	LocalMaxBytes int    // fastcache size for the fastcache and hybrid backends
	KeyPrefix     string // redis key prefix
}

// SetDefaults fills zero values.
func (c *Conf) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendLRU
	}
	if c.Size <= 0 {
		c.Size = defaultSize
	}
	if c.LocalMaxBytes <= 0 {
		c.LocalMaxBytes = defaultLocalMaxBytes
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaultKeyPrefix
	}
}
