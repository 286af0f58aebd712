package store

import (
	"context"
	"sync"

	"Food-Rescue-Ledger/domain"
)

// DefaultQuotaBytes matches the per-origin budget browsers give local storage.
const DefaultQuotaBytes = 5 << 20

type (
	// Medium persists whole collection blobs by name. Set must either store
	// the full blob or nothing, and returns domain.ErrStorageFull when the
	// blob does not fit.
	Medium interface {
		Get(ctx context.Context, name string) ([]byte, bool, error)
		Set(ctx context.Context, name string, blob []byte, schemaVersion int) error
		Names(ctx context.Context) ([]string, error)
	}

	memoryMedium struct {
		mu         sync.RWMutex
		quotaBytes int
		blobs      map[string][]byte
	}
)

// NewMemoryMedium returns a process-local medium. A quota of zero or less
// falls back to DefaultQuotaBytes.
func NewMemoryMedium(quotaBytes int) Medium {
	if quotaBytes <= 0 {
		quotaBytes = DefaultQuotaBytes
	}
	return &memoryMedium{
		quotaBytes: quotaBytes,
		blobs:      make(map[string][]byte),
	}
}

func (m *memoryMedium) Get(_ context.Context, name string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.blobs[name]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

func (m *memoryMedium) Set(_ context.Context, name string, blob []byte, _ int) error {
	if len(blob) > m.quotaBytes {
		return domain.ErrStorageFull
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(blob))
	copy(stored, blob)
	m.blobs[name] = stored
	return nil
}

func (m *memoryMedium) Names(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.blobs))
	for name := range m.blobs {
		names = append(names, name)
	}
	return names, nil
}
