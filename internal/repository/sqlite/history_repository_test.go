package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/repository"
)

func newTestRepo(t *testing.T) repository.HistoryRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewHistoryRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestBatchAndJobRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	batch := &domain.BatchRecord{ID: "b-1", User: "alex", FolderKey: "music", URLCount: 2}
	require.NoError(t, repo.CreateBatch(ctx, batch))
	assert.False(t, batch.CreatedAt.IsZero())

	id, err := repo.CreateJob(ctx, &domain.JobRecord{
		BatchID:   "b-1",
		SourceURL: "https://youtu.be/aaaaaaaaaaa",
		Format:    domain.FormatMP3,
		Status:    domain.JobStatusResolving,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	jobs, err := repo.ListJobsByBatch(ctx, "b-1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, id, jobs[0].ID)
	assert.Equal(t, domain.FormatMP3, jobs[0].Format)
	assert.Equal(t, domain.JobStatusResolving, jobs[0].Status)
}

func TestJobStatusAndCountUpdates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateBatch(ctx, &domain.BatchRecord{ID: "b-1", User: "alex", FolderKey: "music", URLCount: 1}))
	id, err := repo.CreateJob(ctx, &domain.JobRecord{
		BatchID:   "b-1",
		SourceURL: "https://youtu.be/aaaaaaaaaaa",
		Format:    domain.FormatMP4,
		Status:    domain.JobStatusResolving,
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateJobStatus(ctx, id, domain.JobStatusFailed, "timeout"))
	require.NoError(t, repo.UpdateJobCounts(ctx, id, 3, 1, 2))

	jobs, err := repo.ListJobsByBatch(ctx, "b-1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobStatusFailed, jobs[0].Status)
	assert.Equal(t, "timeout", jobs[0].ErrorText)
	assert.Equal(t, 3, jobs[0].Moved)
	assert.Equal(t, 1, jobs[0].Missing)
	assert.Equal(t, 2, jobs[0].Unavailable)
}

func TestListBatchesNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateBatch(ctx, &domain.BatchRecord{ID: "older", User: "a", FolderKey: "music"}))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.CreateBatch(ctx, &domain.BatchRecord{ID: "newer", User: "a", FolderKey: "music"}))

	batches, err := repo.ListBatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "newer", batches[0].ID)
	assert.Equal(t, "older", batches[1].ID)
}

func TestListBatchesHonorsLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"b-1", "b-2", "b-3"} {
		require.NoError(t, repo.CreateBatch(ctx, &domain.BatchRecord{ID: id, User: "a", FolderKey: "music"}))
	}

	batches, err := repo.ListBatches(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, batches, 2)
}
