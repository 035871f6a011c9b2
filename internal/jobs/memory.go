// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jobs

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/pdiddy/research-agent/pkg/types"
)

// MemoryStore keeps jobs in process memory. Records handed out are copies.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*types.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*types.Job)}
}

func (s *MemoryStore) Create(_ context.Context, job *types.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*types.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneJob(j), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, mutate func(*types.Job) error) (*types.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	updated := cloneJob(j)
	if err := mutate(updated); err != nil {
		return nil, err
	}
	updated.ID = id
	s.jobs[id] = updated
	return cloneJob(updated), nil
}

func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]*types.Job, int, error) {
	limit, offset = clampPage(limit, offset)

	s.mu.RLock()
	all := make([]*types.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		all = append(all, j)
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b *types.Job) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	total := len(all)
	if offset >= total {
		return []*types.Job{}, total, nil
	}
	end := min(offset+limit, total)

	page := make([]*types.Job, 0, end-offset)
	for _, j := range all[offset:end] {
		page = append(page, cloneJob(j))
	}
	return page, total, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func cloneJob(j *types.Job) *types.Job {
	c := *j
	c.Citations = slices.Clone(j.Citations)
	c.WebhookResponse = maps.Clone(j.WebhookResponse)
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
