package storage

import (
	"context"
	"database/sql"
	"time"

	"linkvid/internal/models"
)

// HashtagRepository is the data access layer for hashtags.
type HashtagRepository struct {
	db *DB
}

// NewHashtagRepository creates a new HashtagRepository.
func NewHashtagRepository(db *DB) *HashtagRepository {
	return &HashtagRepository{db: db}
}

// GetByName returns the tag with the given name, or nil if it does not exist.
func (r *HashtagRepository) GetByName(ctx context.Context, name string) (*models.HashTag, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM hashtags WHERE name = ?`, name)

	var tag models.HashTag
	err := row.Scan(&tag.ID, &tag.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetOrCreate returns the tag with the given name, creating it on first
// sighting. Tags are never deleted.
func (r *HashtagRepository) GetOrCreate(ctx context.Context, name string) (*models.HashTag, error) {
	tag, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if tag != nil {
		return tag, nil
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO hashtags (name, created_at) VALUES (?, ?)
		 ON CONFLICT(name) DO NOTHING`, name, time.Now())
	if err != nil {
		return nil, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 1 {
		if id, err := res.LastInsertId(); err == nil {
			return &models.HashTag{ID: id, Name: name}, nil
		}
	}
	// Lost a race with a concurrent insert
	return r.GetByName(ctx, name)
}

// AttachToJob associates a tag with a job. Safe to call repeatedly.
func (r *HashtagRepository) AttachToJob(ctx context.Context, jobID string, tagID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO job_hashtags (job_id, hashtag_id) VALUES (?, ?)`,
		jobID, tagID)
	return err
}

// ListByJob returns the tags associated with a job, ordered by name.
func (r *HashtagRepository) ListByJob(ctx context.Context, jobID string) ([]models.HashTag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT h.id, h.name FROM hashtags h
		JOIN job_hashtags jh ON jh.hashtag_id = h.id
		WHERE jh.job_id = ?
		ORDER BY h.name`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.HashTag
	for rows.Next() {
		var tag models.HashTag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
