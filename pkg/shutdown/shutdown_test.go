package shutdown

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager(t *testing.T) {
	m := NewManager()
	assert.False(t, m.Draining())
	assert.Empty(t, m.Reason())

	select {
	case <-m.Done():
		t.Fatal("done before Begin")
	default:
	}

	assert.True(t, m.Begin("SIGTERM"))
	assert.False(t, m.Begin("listener failed"))
	assert.True(t, m.Draining())
	assert.Equal(t, "SIGTERM", m.Reason())
	<-m.Done()
}

func TestManager_ConcurrentBegin(t *testing.T) {
	m := NewManager()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Begin("race") {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, started)
}

func TestManager_Nil(t *testing.T) {
	var m *Manager
	assert.False(t, m.Draining())
}
