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
	"fmt"

	"github.com/google/wire"

	"github.com/citypress/newsroom/pkg/log"
)

// ProviderSet provides the link store.
var ProviderSet = wire.NewSet(ProvideStore)

// ProvideStore builds the store selected by conf.Backend. Redis is only dialed
// for the redis and hybrid backends.
func ProvideStore(conf Conf, redisConf Redis) (Store, func(), error) {
	conf.SetDefaults()
	noop := func() {}

	switch conf.Backend {
	case BackendLRU:
		store, err := NewLRUStore(conf.Size)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	case BackendFastCache:
		return NewFastStore(conf.LocalMaxBytes), noop, nil
	case BackendRedis, BackendHybrid:
		client, err := NewRedis(redisConf)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				log.Warnw("failed to close redis", "error", err)
			}
		}
		remote := NewRedisStore(client, conf.KeyPrefix)
		if conf.Backend == BackendRedis {
			return remote, cleanup, nil
		}
		return NewHybridStore(NewFastStore(conf.LocalMaxBytes), remote), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown link cache backend %q", conf.Backend)
	}
}
