package service

import (
	"context"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/repository"
)

// HistoryService records batch submissions and per-job outcomes and serves
// them back to the API.
type HistoryService interface {
	RecordBatch(ctx context.Context, batch *domain.BatchRecord) error
	RecordJob(ctx context.Context, job *domain.JobRecord) (int64, error)
	JobStatus(ctx context.Context, id int64, status domain.JobStatus, errorText string) error
	JobCounts(ctx context.Context, id int64, moved, missing, unavailable int) error
	RecentBatches(ctx context.Context, limit int) ([]domain.BatchRecord, error)
	BatchJobs(ctx context.Context, batchID string) ([]domain.JobRecord, error)
}

type historyService struct {
	repo repository.HistoryRepository
}

func NewHistoryService(repo repository.HistoryRepository) HistoryService {
	return &historyService{repo: repo}
}

func (s *historyService) RecordBatch(ctx context.Context, batch *domain.BatchRecord) error {
	return s.repo.CreateBatch(ctx, batch)
}

func (s *historyService) RecordJob(ctx context.Context, job *domain.JobRecord) (int64, error) {
	return s.repo.CreateJob(ctx, job)
}

func (s *historyService) JobStatus(ctx context.Context, id int64, status domain.JobStatus, errorText string) error {
	return s.repo.UpdateJobStatus(ctx, id, status, errorText)
}

func (s *historyService) JobCounts(ctx context.Context, id int64, moved, missing, unavailable int) error {
	return s.repo.UpdateJobCounts(ctx, id, moved, missing, unavailable)
}

func (s *historyService) RecentBatches(ctx context.Context, limit int) ([]domain.BatchRecord, error) {
	return s.repo.ListBatches(ctx, limit)
}

func (s *historyService) BatchJobs(ctx context.Context, batchID string) ([]domain.JobRecord, error) {
	return s.repo.ListJobsByBatch(ctx, batchID)
}
