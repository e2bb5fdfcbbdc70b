package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/repository"
)

const (
	createBatchesTable = `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	user TEXT NOT NULL,
	folder_key TEXT NOT NULL,
	url_count INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`
	createJobsTable = `
CREATE TABLE IF NOT EXISTS jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id TEXT NOT NULL,
	source_url TEXT NOT NULL,
	format TEXT NOT NULL,
	status TEXT NOT NULL,
	moved INTEGER NOT NULL DEFAULT 0,
	missing INTEGER NOT NULL DEFAULT 0,
	unavailable INTEGER NOT NULL DEFAULT 0,
	error_text TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (batch_id) REFERENCES batches (id) ON DELETE CASCADE
);
`
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) repository.HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createBatchesTable); err != nil {
		return fmt.Errorf("create batches table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createJobsTable); err != nil {
		return fmt.Errorf("create jobs table: %w", err)
	}
	return nil
}

func (r *HistoryRepository) CreateBatch(ctx context.Context, batch *domain.BatchRecord) error {
	now := time.Now().UTC()
	batch.CreatedAt = now
	batch.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO batches (id, user, folder_key, url_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		batch.ID, batch.User, batch.FolderKey, batch.URLCount, batch.CreatedAt, batch.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *HistoryRepository) CreateJob(ctx context.Context, job *domain.JobRecord) (int64, error) {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO jobs (batch_id, source_url, format, status, moved, missing, unavailable, error_text, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.BatchID, job.SourceURL, string(job.Format), string(job.Status),
		job.Moved, job.Missing, job.Unavailable, job.ErrorText, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("job insert id: %w", err)
	}
	job.ID = id
	return id, nil
}

func (r *HistoryRepository) UpdateJobStatus(ctx context.Context, id int64, status domain.JobStatus, errorText string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE jobs SET status = ?, error_text = ?, updated_at = ? WHERE id = ?`,
		string(status), errorText, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return nil
}

func (r *HistoryRepository) UpdateJobCounts(ctx context.Context, id int64, moved, missing, unavailable int) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE jobs SET moved = ?, missing = ?, unavailable = ?, updated_at = ? WHERE id = ?`,
		moved, missing, unavailable, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update job counts: %w", err)
	}
	return nil
}

func (r *HistoryRepository) ListBatches(ctx context.Context, limit int) ([]domain.BatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user, folder_key, url_count, created_at, updated_at
FROM batches ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []domain.BatchRecord
	for rows.Next() {
		var b domain.BatchRecord
		if err := rows.Scan(&b.ID, &b.User, &b.FolderKey, &b.URLCount, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

func (r *HistoryRepository) ListJobsByBatch(ctx context.Context, batchID string) ([]domain.JobRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, batch_id, source_url, format, status, moved, missing, unavailable, error_text, created_at, updated_at
FROM jobs WHERE batch_id = ? ORDER BY id ASC`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.JobRecord
	for rows.Next() {
		var (
			j      domain.JobRecord
			format string
			status string
		)
		if err := rows.Scan(&j.ID, &j.BatchID, &j.SourceURL, &format, &status,
			&j.Moved, &j.Missing, &j.Unavailable, &j.ErrorText, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		j.Format = domain.Format(format)
		j.Status = domain.JobStatus(status)
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}
