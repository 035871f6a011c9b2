// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jobs keeps the research job registry and runs jobs in the
// background. A Store persists job records; a Runner drives the pipeline
// for each submitted job and hands finished reports to the integrations.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pdiddy/research-agent/pkg/types"
)

// ErrNotFound is returned for unknown job IDs.
var ErrNotFound = errors.New("job not found")

// Store persists job records. Update is an atomic read-mutate-write: no
// concurrent Update or Create can interleave with it for the same ID.
type Store interface {
	Create(ctx context.Context, job *types.Job) error
	Get(ctx context.Context, id string) (*types.Job, error)
	Update(ctx context.Context, id string, mutate func(*types.Job) error) (*types.Job, error)

	// List returns jobs newest first plus the total number of jobs.
	List(ctx context.Context, limit, offset int) ([]*types.Job, int, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open returns the store selected by cfg.
func Open(ctx context.Context, cfg types.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", types.StoreMemory:
		return NewMemoryStore(), nil
	case types.StoreSQLite:
		return NewSQLiteStore(cfg.DSN)
	case types.StorePostgres:
		return NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// encodeJob and decodeJob convert between a Job and its stored payload.
func encodeJob(j *types.Job) ([]byte, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("encoding job %s: %w", j.ID, err)
	}
	return data, nil
}

func decodeJob(data []byte) (*types.Job, error) {
	var j types.Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("decoding job: %w", err)
	}
	return &j, nil
}

// clampPage normalizes list paging arguments.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
