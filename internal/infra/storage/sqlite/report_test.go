package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/usecase"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newReport(repo, team string, score int) entity.WorkflowReport {
	return entity.WorkflowReport{
		Repo:        repo,
		Team:        team,
		WindowDays:  14,
		Score:       score,
		Bottlenecks: []string{"18% issue reopen rate exceeds 10% threshold"},
		SOP:         "## Goals\n...",
		Metrics:     entity.WorkflowMetrics{ReopenRate: 0.18, WindowDays: 14},
	}
}

func TestReportStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewReportStorage(openTestDB(t), "", nil)

	created, err := store.Create(ctx, newReport("acme/api", "platform", 71))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, "/api/reports/"+created.ID, created.URL)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Score, got.Score)
	assert.Equal(t, created.Bottlenecks, got.Bottlenecks)
	assert.Equal(t, 0.18, got.Metrics.ReopenRate)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	_, err = store.Get(ctx, "nope")
	assert.ErrorIs(t, err, usecase.ErrReportNotFound)
}

func TestReportStorage_VersionsPerKey(t *testing.T) {
	ctx := context.Background()
	store := NewReportStorage(openTestDB(t), "https://cms.example.com/r", nil)

	var versions []int
	for i := 0; i < 3; i++ {
		r, err := store.Create(ctx, newReport("acme/api", "platform", 70+i))
		require.NoError(t, err)
		versions = append(versions, r.Version)
	}
	other, err := store.Create(ctx, newReport("acme/api", "mobile", 50))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, versions)
	assert.Equal(t, 1, other.Version)
	assert.Equal(t, "https://cms.example.com/r/"+other.ID, other.URL)
}

func TestReportStorage_ConcurrentCreatesGetDistinctVersions(t *testing.T) {
	ctx := context.Background()
	store := NewReportStorage(openTestDB(t), "", nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, newReport("acme/api", "platform", 80))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := store.List(ctx, entity.ReportFilter{Repo: "acme/api", Team: "platform", Limit: 100})
	require.NoError(t, err)
	seen := map[int]bool{}
	for _, r := range list {
		seen[r.Version] = true
	}
	assert.Len(t, seen, 8)
}

func TestReportStorage_ListAndScoreRows(t *testing.T) {
	ctx := context.Background()
	s := NewReportStorage(openTestDB(t), "", nil).(*ReportStorage)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Hour)
	}

	for _, r := range []entity.WorkflowReport{
		newReport("acme/api", "platform", 90),
		newReport("acme/web", "frontend", 60),
		newReport("acme/api", "platform", 75),
	} {
		_, err := s.Create(ctx, r)
		require.NoError(t, err)
	}

	all, err := s.List(ctx, entity.ReportFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 75, all[0].Score)

	filtered, err := s.List(ctx, entity.ReportFilter{Repo: "acme/api", Limit: 1})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].Version)

	rows, err := s.ScoreRows(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	recent, err := s.ScoreRows(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
