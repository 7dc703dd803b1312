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

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStore is a bounded in-process store. The least recently used entry is
// evicted once Size entries are held.
type LRUStore struct {
	cache *lru.Cache[string, Entry]
}

// NewLRUStore creates a store holding at most size entries.
func NewLRUStore(size int) (*LRUStore, error) {
	if size <= 0 {
		size = defaultSize
	}
	c, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, err
	}
	return &LRUStore{cache: c}, nil
}

func (s *LRUStore) Get(_ context.Context, key string) (Entry, bool) {
	return s.cache.Get(key)
}

func (s *LRUStore) Put(_ context.Context, key string, entry Entry) {
	s.cache.Add(key, entry)
}

func (s *LRUStore) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		s.cache.Remove(key)
	}
}

// Len returns the number of entries held.
func (s *LRUStore) Len() int {
	return s.cache.Len()
}
