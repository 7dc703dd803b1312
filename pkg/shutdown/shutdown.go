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

package shutdown

import (
	"sync"
	"sync/atomic"

	"github.com/google/wire"
)

// ProviderSet provides the process wide drain state
var ProviderSet = wire.NewSet(NewManager)

// Manager tracks whether the process is draining. Health checks report it so
// load balancers stop routing new media requests before the listener closes.
type Manager struct {
	draining atomic.Bool
	once     sync.Once
	done     chan struct{}
	reason   atomic.Value // string
}

func NewManager() *Manager {
	return &Manager{done: make(chan struct{})}
}

// Draining reports whether Begin was called. A nil Manager never drains.
func (m *Manager) Draining() bool {
	return m != nil && m.draining.Load()
}

// Begin starts draining. Only the first call returns true.
func (m *Manager) Begin(reason string) bool {
	started := false
	m.once.Do(func() {
		m.reason.Store(reason)
		m.draining.Store(true)
		close(m.done)
		started = true
	})
	return started
}

// Done is closed once draining has begun.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Reason returns what triggered the drain.
func (m *Manager) Reason() string {
	if r, ok := m.reason.Load().(string); ok {
		return r
	}
	return ""
}
