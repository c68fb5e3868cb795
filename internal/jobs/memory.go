package jobs

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps jobs in process memory
type MemoryRepository struct {
	mu   sync.RWMutex
	jobs map[string]*ExtractionJob
}

// NewMemoryRepository creates an empty in-memory registry
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{jobs: make(map[string]*ExtractionJob)}
}

func (m *MemoryRepository) Get(ctx context.Context, id string) (*ExtractionJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound{ID: id}
	}
	return job.clone(), nil
}

func (m *MemoryRepository) Put(ctx context.Context, job *ExtractionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job.clone()
	return nil
}

func (m *MemoryRepository) List(ctx context.Context, limit int) ([]*ExtractionJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*ExtractionJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		all = append(all, job.clone())
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].SubmittedAt.After(all[j].SubmittedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
