// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-agent/pkg/types"
)

var baseTime = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

func newJob(id string, offset time.Duration) *types.Job {
	return &types.Job{
		ID:               id,
		Status:           types.JobPending,
		Query:            "quantum computing",
		MaxResults:       10,
		IncludeCitations: true,
		Progress:         types.StepInitialized,
		CreatedAt:        baseTime.Add(offset),
	}
}

// testStore runs the behavior every Store must share.
func testStore(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Create(ctx, newJob("a", 0)))

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "a", got.ID)
		assert.Equal(t, types.JobPending, got.Status)
		assert.Equal(t, "quantum computing", got.Query)
		assert.True(t, got.CreatedAt.Equal(baseTime))
	})

	t.Run("get unknown", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(ctx, "missing")
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("duplicate create", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Create(ctx, newJob("a", 0)))
		assert.Error(t, s.Create(ctx, newJob("a", 0)))
	})

	t.Run("update", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Create(ctx, newJob("a", 0)))

		done := baseTime.Add(time.Minute)
		updated, err := s.Update(ctx, "a", func(j *types.Job) error {
			j.Status = types.JobCompleted
			j.Title = "Report"
			j.Citations = []types.Citation{{Title: "T", URL: "https://x.org", AccessedDate: "2026-03-09"}}
			j.CompletedAt = &done
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, types.JobCompleted, updated.Status)

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "Report", got.Title)
		assert.Len(t, got.Citations, 1)
		require.NotNil(t, got.CompletedAt)
		assert.True(t, got.CompletedAt.Equal(done))
	})

	t.Run("update error leaves record unchanged", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Create(ctx, newJob("a", 0)))

		_, err := s.Update(ctx, "a", func(j *types.Job) error {
			j.Status = types.JobFailed
			return fmt.Errorf("abort")
		})
		require.Error(t, err)

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, types.JobPending, got.Status)
	})

	t.Run("update unknown", func(t *testing.T) {
		s := open(t)
		_, err := s.Update(ctx, "missing", func(*types.Job) error { return nil })
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Create(ctx, newJob("a", 0)))

		const n = 20
		var wg sync.WaitGroup
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Update(ctx, "a", func(j *types.Job) error {
					j.MaxResults++
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 10+n, got.MaxResults)
	})

	t.Run("list newest first", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Create(ctx, newJob("old", 0)))
		require.NoError(t, s.Create(ctx, newJob("new", 2*time.Hour)))
		require.NoError(t, s.Create(ctx, newJob("mid", time.Hour)))

		jobs, total, err := s.List(ctx, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, jobs, 3)
		assert.Equal(t, []string{"new", "mid", "old"}, []string{jobs[0].ID, jobs[1].ID, jobs[2].ID})

		page, total, err := s.List(ctx, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, page, 1)
		assert.Equal(t, "mid", page[0].ID)

		empty, total, err := s.List(ctx, 10, 5)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Empty(t, empty)
	})

	t.Run("ping", func(t *testing.T) {
		s := open(t)
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, newJob("a", 0)))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	got.Status = types.JobFailed

	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, types.JobPending, again.Status)
}

func TestSQLiteStore(t *testing.T) {
	testStore(t, func(t *testing.T) Store {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "jobs.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "jobs.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, newJob("a", 0)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	_, err := NewSQLiteStore("")
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("RESEARCH_AGENT_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("RESEARCH_AGENT_TEST_PG_DSN not set")
	}
	testStore(t, func(t *testing.T) Store {
		ctx := context.Background()
		s, err := NewPostgresStore(ctx, dsn)
		require.NoError(t, err)
		_, err = s.pool.Exec(ctx, `TRUNCATE research_jobs`)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, types.StoreConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, types.StoreConfig{Driver: types.StoreSQLite, DSN: filepath.Join(t.TempDir(), "j.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	s.Close()

	_, err = Open(ctx, types.StoreConfig{Driver: "mongo"})
	assert.Error(t, err)
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 10, 0},
		{5, 3, 5, 3},
		{500, -1, 100, 0},
	}
	for _, tt := range tests {
		l, o := clampPage(tt.limit, tt.offset)
		if l != tt.wantLimit || o != tt.wantOffset {
			t.Errorf("clampPage(%d, %d) = %d, %d; want %d, %d", tt.limit, tt.offset, l, o, tt.wantLimit, tt.wantOffset)
		}
	}
}
