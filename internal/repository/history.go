package repository

import (
	"context"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
)

// HistoryRepository persists submitted batches and their per-URL outcomes.
type HistoryRepository interface {
	Init(ctx context.Context) error
	CreateBatch(ctx context.Context, batch *domain.BatchRecord) error
	CreateJob(ctx context.Context, job *domain.JobRecord) (int64, error)
	UpdateJobStatus(ctx context.Context, id int64, status domain.JobStatus, errorText string) error
	UpdateJobCounts(ctx context.Context, id int64, moved, missing, unavailable int) error
	ListBatches(ctx context.Context, limit int) ([]domain.BatchRecord, error)
	ListJobsByBatch(ctx context.Context, batchID string) ([]domain.JobRecord, error)
}
