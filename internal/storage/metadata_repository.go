package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"linkvid/internal/models"
)

// MetadataRepository is the data access layer for job metadata.
type MetadataRepository struct {
	db *DB
}

// NewMetadataRepository creates a new MetadataRepository.
func NewMetadataRepository(db *DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

// GetByJobID returns the metadata row for a job, or nil if none exists yet.
func (r *MetadataRepository) GetByJobID(ctx context.Context, jobID string) (*models.JobMetadata, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT job_id, author_name, author_headline, author_profile_url, author_username,
		       post_text, published_date, likes_count, comments_count,
		       embed_id, media_id, resolution, quality, has_auth_token,
		       open_graph, twitter_card
		FROM job_metadata WHERE job_id = ?`, jobID)

	var meta models.JobMetadata
	var openGraph, twitterCard *string
	err := row.Scan(
		&meta.JobID, &meta.AuthorName, &meta.AuthorHeadline,
		&meta.AuthorProfileURL, &meta.AuthorUsername,
		&meta.PostText, &meta.PublishedDate, &meta.LikesCount, &meta.CommentsCount,
		&meta.EmbedID, &meta.MediaID, &meta.Resolution, &meta.Quality,
		&meta.HasAuthToken, &openGraph, &twitterCard,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if meta.OpenGraph, err = decodeTagMap(openGraph); err != nil {
		return nil, fmt.Errorf("job %s: bad open_graph payload: %w", jobID, err)
	}
	if meta.TwitterCard, err = decodeTagMap(twitterCard); err != nil {
		return nil, fmt.Errorf("job %s: bad twitter_card payload: %w", jobID, err)
	}
	return &meta, nil
}

// Upsert creates the metadata row for a job on first call and merges the
// given fields into the existing row on later calls. Non-nil incoming values
// overwrite; nil incoming values leave the stored column alone.
func (r *MetadataRepository) Upsert(ctx context.Context, jobID string, incoming *models.JobMetadata) (*models.JobMetadata, error) {
	current, err := r.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		current = &models.JobMetadata{JobID: jobID}
	}
	current.Merge(incoming)

	openGraph, err := encodeTagMap(current.OpenGraph)
	if err != nil {
		return nil, err
	}
	twitterCard, err := encodeTagMap(current.TwitterCard)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO job_metadata (
			job_id, author_name, author_headline, author_profile_url, author_username,
			post_text, published_date, likes_count, comments_count,
			embed_id, media_id, resolution, quality, has_auth_token,
			open_graph, twitter_card
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			author_name        = excluded.author_name,
			author_headline    = excluded.author_headline,
			author_profile_url = excluded.author_profile_url,
			author_username    = excluded.author_username,
			post_text          = excluded.post_text,
			published_date     = excluded.published_date,
			likes_count        = excluded.likes_count,
			comments_count     = excluded.comments_count,
			embed_id           = excluded.embed_id,
			media_id           = excluded.media_id,
			resolution         = excluded.resolution,
			quality            = excluded.quality,
			has_auth_token     = excluded.has_auth_token,
			open_graph         = excluded.open_graph,
			twitter_card       = excluded.twitter_card`,
		jobID, current.AuthorName, current.AuthorHeadline,
		current.AuthorProfileURL, current.AuthorUsername,
		current.PostText, current.PublishedDate, current.LikesCount, current.CommentsCount,
		current.EmbedID, current.MediaID, current.Resolution, current.Quality,
		current.HasAuthToken, openGraph, twitterCard,
	)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET updated_at = ? WHERE id = ?`, time.Now(), jobID); err != nil {
		return nil, err
	}
	return current, nil
}

func encodeTagMap(m map[string]string) (*string, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func decodeTagMap(s *string) (map[string]string, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(*s), &m); err != nil {
		return nil, err
	}
	return m, nil
}
