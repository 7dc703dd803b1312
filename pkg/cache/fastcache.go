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

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"

	"github.com/citypress/newsroom/pkg/log"
)

// FastStore is a byte-bounded local store backed by VictoriaMetrics fastcache.
// Entries are sonic encoded; old entries are dropped when the buckets wrap.
type FastStore struct {
	cache *fastcache.Cache
}

// NewFastStore creates a store using at most maxBytes of memory.
func NewFastStore(maxBytes int) *FastStore {
	if maxBytes <= 0 {
		maxBytes = defaultLocalMaxBytes
	}
	return &FastStore{cache: fastcache.New(maxBytes)}
}

func (s *FastStore) Get(_ context.Context, key string) (Entry, bool) {
	data, ok := s.cache.HasGet(nil, []byte(key))
	if !ok {
		return Entry{}, false
	}
	var entry Entry
	if err := sonic.Unmarshal(data, &entry); err != nil {
		log.Warnw("dropping undecodable cache entry", "key", key, "error", err)
		s.cache.Del([]byte(key))
		return Entry{}, false
	}
	return entry, true
}

func (s *FastStore) Put(_ context.Context, key string, entry Entry) {
	data, err := sonic.Marshal(entry)
	if err != nil {
		log.Warnw("failed to marshal cache entry", "key", key, "error", err)
		return
	}
	s.cache.Set([]byte(key), data)
}

func (s *FastStore) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		s.cache.Del([]byte(key))
	}
}

// Reset drops every entry.
func (s *FastStore) Reset() {
	s.cache.Reset()
}
