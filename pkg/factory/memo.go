package factory

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// memoTable caches one service's instances by canonical options key. Entries are never
// evicted and failed constructions are not stored.
type memoTable struct {
	mu      sync.Mutex
	entries map[string]Instance
	group   singleflight.Group
}

func newMemoTable() *memoTable {
	return &memoTable{entries: make(map[string]Instance)}
}

func (m *memoTable) lookup(key string) (Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	instance, ok := m.entries[key]

	return instance, ok
}

// getOrBuild returns the cached instance for key, calling build at most once per key even
// under concurrent first access. reused is false only for the caller that ran build.
func (m *memoTable) getOrBuild(
	key string,
	build func() (Instance, error),
) (Instance, bool, error) {
	if instance, ok := m.lookup(key); ok {
		return instance, true, nil
	}

	constructed := false

	value, err, _ := m.group.Do(key, func() (any, error) {
		if instance, ok := m.lookup(key); ok {
			return instance, nil
		}

		instance, err := build()
		if err != nil {
			return nil, err
		}

		constructed = true

		m.mu.Lock()
		m.entries[key] = instance
		m.mu.Unlock()

		return instance, nil
	})
	if err != nil {
		return nil, false, err //nolint:wrapcheck // build errors are wrapped by the factory.
	}

	instance, _ := value.(Instance)

	return instance, !constructed, nil
}

func (m *memoTable) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
