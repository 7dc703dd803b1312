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

	"github.com/citypress/newsroom/pkg/log"
)

// HybridStore reads through a local store into a shared remote one.
// A remote hit is copied into the local store. An expired local entry does
// not shadow the remote one, another replica may have renewed it.
type HybridStore struct {
	local  Store
	remote Store
	now    func() time.Time
}

func NewHybridStore(local, remote Store) *HybridStore {
	return &HybridStore{local: local, remote: remote, now: time.Now}
}

func (s *HybridStore) Get(ctx context.Context, key string) (Entry, bool) {
	local, ok := s.local.Get(ctx, key)
	if ok && local.Valid(s.now()) {
		return local, true
	}
	entry, found := s.remote.Get(ctx, key)
	if !found {
		// the caller still decides what to do with a stale entry
		return local, ok
	}
	log.Debugw("hybrid cache hit (remote)", "key", key)
	s.local.Put(ctx, key, entry)
	return entry, true
}

func (s *HybridStore) Put(ctx context.Context, key string, entry Entry) {
	s.local.Put(ctx, key, entry)
	s.remote.Put(ctx, key, entry)
}

func (s *HybridStore) Delete(ctx context.Context, keys ...string) {
	s.local.Delete(ctx, keys...)
	s.remote.Delete(ctx, keys...)
}
