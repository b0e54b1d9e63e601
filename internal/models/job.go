package models

import "time"

// Job is one user-submitted LinkedIn video download request.
type Job struct {
	ID           string    `json:"id"`
	PostURL      string    `json:"post_url"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Filled by the immediate static page extraction
	ExtractedAt *time.Time `json:"extracted_at,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`

	// Set only on successful completion
	VideoFile *string  `json:"video_file,omitempty"`
	FileSize  *float64 `json:"file_size,omitempty"` // MB

	// Optional credentials for the browser login, never serialized
	LinkedInEmail    *string `json:"-"`
	LinkedInPassword *string `json:"-"`
}

// Job statuses. Transitions are one-directional:
// pending -> processing -> completed | failed.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Terminal reports whether the job can no longer change state.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
