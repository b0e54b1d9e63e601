package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"linkvid/internal/models"
)

// JobRepository is the data access layer for jobs.
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, post_url, status, error_message, created_at, updated_at,
	extracted_at, title, description, video_file, file_size,
	linkedin_email, linkedin_password`

// Create inserts a new job in the pending state.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, post_url, status, created_at, updated_at, linkedin_email, linkedin_password)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.PostURL, job.Status, job.CreatedAt, job.UpdatedAt,
		job.LinkedInEmail, job.LinkedInPassword,
	)
	return err
}

// GetByID returns the job with the given id, or nil if it does not exist.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

// NextPending returns the oldest pending job, or nil if none is queued.
func (r *JobRepository) NextPending(ctx context.Context) (*models.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY created_at LIMIT 1`,
		models.JobStatusPending)
	return scanJob(row)
}

// ListRecent returns the most recently created jobs.
func (r *JobRepository) ListRecent(ctx context.Context, limit int) ([]models.Job, error) {
	if limit == 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		job, err := scanJobRow(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// MarkProcessing moves a pending job to processing. It is a no-op returning
// an error if the job is not pending, which keeps transitions one-directional
// and protects against a job being picked up twice.
func (r *JobRepository) MarkProcessing(ctx context.Context, id string) error {
	return r.transition(ctx, id, models.JobStatusProcessing,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		models.JobStatusProcessing, time.Now(), id, models.JobStatusPending)
}

// Complete moves a processing job to completed.
func (r *JobRepository) Complete(ctx context.Context, id string) error {
	return r.transition(ctx, id, models.JobStatusCompleted,
		`UPDATE jobs SET status = ?, error_message = NULL, updated_at = ? WHERE id = ? AND status = ?`,
		models.JobStatusCompleted, time.Now(), id, models.JobStatusProcessing)
}

// Fail moves a processing job to failed with the given message. A job never
// skips processing on the way to failed, and a failed row never keeps video
// columns from a partially finished run.
func (r *JobRepository) Fail(ctx context.Context, id string, errorMsg string) error {
	return r.transition(ctx, id, models.JobStatusFailed,
		`UPDATE jobs SET status = ?, error_message = ?, video_file = NULL, file_size = NULL, updated_at = ?
		 WHERE id = ? AND status = ?`,
		models.JobStatusFailed, errorMsg, time.Now(), id, models.JobStatusProcessing)
}

func (r *JobRepository) transition(ctx context.Context, id, target, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %s: invalid transition to %s", id, target)
	}
	return nil
}

// SetPageMetadata stores the immediately extracted title and description.
func (r *JobRepository) SetPageMetadata(ctx context.Context, id string, title, description *string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET title = ?, description = ?, extracted_at = ?, updated_at = ?
		WHERE id = ?`,
		title, description, now, now, id)
	return err
}

// SetVideoFile records the stored video path and its size in MB.
func (r *JobRepository) SetVideoFile(ctx context.Context, id, videoFile string, fileSizeMB float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET video_file = ?, file_size = ?, updated_at = ?
		WHERE id = ?`,
		videoFile, fileSizeMB, time.Now(), id)
	return err
}

// Delete removes a job. Metadata and hashtag links go with it via cascade.
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	return err
}

// CountByStatus returns the number of jobs per status.
func (r *JobRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row *sql.Row) (*models.Job, error) {
	job, err := scanJobRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func scanJobRow(row rowScanner) (*models.Job, error) {
	var job models.Job
	err := row.Scan(
		&job.ID, &job.PostURL, &job.Status, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt, &job.ExtractedAt,
		&job.Title, &job.Description, &job.VideoFile, &job.FileSize,
		&job.LinkedInEmail, &job.LinkedInPassword,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
