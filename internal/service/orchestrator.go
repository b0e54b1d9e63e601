// Package service coordinates the download workflow: submission with
// immediate page metadata, the background processing state machine, and the
// synchronous resolve-only flow.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"linkvid/internal/browser"
	"linkvid/internal/download"
	"linkvid/internal/mediastore"
	"linkvid/internal/models"
	"linkvid/internal/pagemeta"
	"linkvid/internal/scrape"
	"linkvid/internal/storage"
)

// ErrInvalidPostURL rejects URLs without the LinkedIn post path marker.
var ErrInvalidPostURL = errors.New("URL must be a valid LinkedIn post URL")

// Job-fatal failure messages, stored verbatim as the job's error_message.
const (
	msgDriverInit     = "Failed to initialize WebDriver"
	msgNoVideoURL     = "Could not extract video URL from the post"
	msgDownloadFailed = "Failed to download video"
)

// SubmitRequest is one download submission.
type SubmitRequest struct {
	PostURL          string
	LinkedInEmail    string
	LinkedInPassword string
}

// Orchestrator sequences extraction, probing, resolution and download for
// each job. One browser session is created per job run, never shared.
type Orchestrator struct {
	jobs     *storage.JobRepository
	metadata *storage.MetadataRepository
	hashtags *storage.HashtagRepository

	extractor *pagemeta.Extractor
	prober    *scrape.Prober
	resolver  *scrape.Resolver
	fetcher   *download.Fetcher
	store     *mediastore.Store

	newSession   func() browser.Session
	loginTimeout time.Duration
	logger       *log.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	jobs *storage.JobRepository,
	metadata *storage.MetadataRepository,
	hashtags *storage.HashtagRepository,
	extractor *pagemeta.Extractor,
	prober *scrape.Prober,
	resolver *scrape.Resolver,
	fetcher *download.Fetcher,
	store *mediastore.Store,
	newSession func() browser.Session,
	loginTimeout time.Duration,
	logger *log.Logger,
) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		jobs:         jobs,
		metadata:     metadata,
		hashtags:     hashtags,
		extractor:    extractor,
		prober:       prober,
		resolver:     resolver,
		fetcher:      fetcher,
		store:        store,
		newSession:   newSession,
		loginTimeout: loginTimeout,
		logger:       logger,
	}
}

// ValidatePostURL is the submission gate: the URL must carry the LinkedIn
// post path marker.
func ValidatePostURL(postURL string) error {
	if !strings.Contains(postURL, "linkedin.com/posts/") {
		return ErrInvalidPostURL
	}
	return nil
}

// Submit validates the request, creates a pending job, runs the immediate
// static page extraction and seeds the metadata row, so the caller's first
// read already has partial data. The background worker picks the job up
// afterwards.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (*models.Job, error) {
	if err := ValidatePostURL(req.PostURL); err != nil {
		return nil, err
	}

	job := &models.Job{PostURL: req.PostURL}
	if req.LinkedInEmail != "" {
		job.LinkedInEmail = &req.LinkedInEmail
	}
	if req.LinkedInPassword != "" {
		job.LinkedInPassword = &req.LinkedInPassword
	}
	if err := o.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	o.logger.Printf("Job %s submitted for %s", job.ID, job.PostURL)

	if err := o.extractImmediateMetadata(ctx, job); err != nil {
		// Best-effort: the background run refreshes it anyway
		o.logger.Printf("Immediate metadata extraction for job %s failed: %v", job.ID, err)
	}

	return o.jobs.GetByID(ctx, job.ID)
}

// extractImmediateMetadata runs the static page extraction and creates the
// metadata row with whatever was found plus the username from the URL.
func (o *Orchestrator) extractImmediateMetadata(ctx context.Context, job *models.Job) error {
	page := o.extractor.Extract(ctx, job.PostURL)
	if page.Error == "" {
		if err := o.jobs.SetPageMetadata(ctx, job.ID, page.Title, page.Description); err != nil {
			return err
		}
	} else {
		o.logger.Printf("Page metadata fetch for job %s degraded: %s", job.ID, page.Error)
	}

	seed := &models.JobMetadata{AuthorUsername: scrape.UsernameFromPostURL(job.PostURL)}
	if page.Error == "" {
		seed.OpenGraph = page.OpenGraph
		seed.TwitterCard = page.TwitterCard
	}
	_, err := o.metadata.Upsert(ctx, job.ID, seed)
	return err
}

// Process runs the background phase of one job to a terminal state. Any
// failure, including a panic in a probing step, is converted to the failed
// status with a human-readable message; the browser session is always
// closed.
func (o *Orchestrator) Process(ctx context.Context, jobID string) error {
	job, err := o.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %s does not exist", jobID)
	}

	if err := o.jobs.MarkProcessing(ctx, jobID); err != nil {
		// Already picked up or in a terminal state
		return err
	}
	o.logger.Printf("Processing job %s", jobID)

	session := o.newSession()
	defer session.Close()

	if err := o.runPipeline(ctx, job, session); err != nil {
		o.logger.Printf("Job %s failed: %v", jobID, err)
		if failErr := o.jobs.Fail(ctx, jobID, err.Error()); failErr != nil {
			o.logger.Printf("Could not record failure for job %s: %v", jobID, failErr)
		}
		return err
	}

	if err := o.jobs.Complete(ctx, jobID); err != nil {
		return err
	}
	o.logger.Printf("Job %s completed", jobID)
	return nil
}

func (o *Orchestrator) runPipeline(ctx context.Context, job *models.Job, session browser.Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	// Idempotent refresh of the static page metadata
	page := o.extractor.Extract(ctx, job.PostURL)
	if page.Error == "" {
		if err := o.jobs.SetPageMetadata(ctx, job.ID, page.Title, page.Description); err != nil {
			return err
		}
	}

	if err := session.Start(); err != nil {
		o.logger.Printf("Browser start failed for job %s: %v", job.ID, err)
		return errors.New(msgDriverInit)
	}

	if job.LinkedInEmail != nil && job.LinkedInPassword != nil {
		if err := browser.Login(session, *job.LinkedInEmail, *job.LinkedInPassword, o.loginTimeout); err != nil {
			// Non-fatal: continue unauthenticated
			o.logger.Printf("LinkedIn login failed for job %s: %v", job.ID, err)
		}
	}

	post := o.prober.ProbePost(session, job.PostURL)

	videoURL, err := o.resolver.Resolve(session, job.PostURL)
	if err != nil {
		return errors.New(msgNoVideoURL)
	}
	urlMeta := scrape.ParseVideoURLMetadata(videoURL)

	temp, err := os.CreateTemp("", "linkvid-*.mp4")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := temp.Name()
	temp.Close()

	sizeMB, err := o.fetcher.Fetch(ctx, videoURL, tempPath)
	if err != nil {
		o.logger.Printf("Download failed for job %s: %v", job.ID, err)
		os.Remove(tempPath)
		return errors.New(msgDownloadFailed)
	}

	rel, err := o.store.SaveVideo(tempPath)
	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to store video: %w", err)
	}

	if err := o.recordResult(ctx, job, rel, sizeMB, mergedMetadata(post, urlMeta, page), post.Hashtags); err != nil {
		// The job is about to fail, so the stored file must not outlive it
		if removeErr := o.store.Remove(rel); removeErr != nil {
			o.logger.Printf("Could not remove stored video %s: %v", rel, removeErr)
		}
		return err
	}
	return nil
}

// recordResult persists the outcome of a successful pipeline run. The video
// columns are written last: a failed job never carries them.
func (o *Orchestrator) recordResult(ctx context.Context, job *models.Job, rel string, sizeMB float64, merged *models.JobMetadata, tags []string) error {
	if _, err := o.metadata.Upsert(ctx, job.ID, merged); err != nil {
		return err
	}

	for _, name := range tags {
		tag, err := o.hashtags.GetOrCreate(ctx, name)
		if err != nil {
			return err
		}
		if err := o.hashtags.AttachToJob(ctx, job.ID, tag.ID); err != nil {
			return err
		}
	}

	return o.jobs.SetVideoFile(ctx, job.ID, rel, sizeMB)
}

// ResolveDownloadURL resolves a post's video URL synchronously without
// creating a job.
func (o *Orchestrator) ResolveDownloadURL(ctx context.Context, postURL, email, password string) (string, error) {
	if err := ValidatePostURL(postURL); err != nil {
		return "", err
	}

	session := o.newSession()
	defer session.Close()

	if err := session.Start(); err != nil {
		return "", fmt.Errorf("%w: %v", browser.ErrInit, err)
	}

	if email != "" && password != "" {
		if err := browser.Login(session, email, password, o.loginTimeout); err != nil {
			o.logger.Printf("LinkedIn login failed: %v", err)
		}
	}

	return o.resolver.Resolve(session, postURL)
}

// mergedMetadata combines the probe result, the video-URL parameters and the
// page's tag maps into one explicit field set for the metadata merge.
func mergedMetadata(post *scrape.PostMetadata, urlMeta *scrape.VideoURLMetadata, page *pagemeta.PageMetadata) *models.JobMetadata {
	merged := &models.JobMetadata{
		AuthorName:       post.AuthorName,
		AuthorHeadline:   post.AuthorHeadline,
		AuthorProfileURL: post.AuthorProfileURL,
		AuthorUsername:   post.AuthorUsername,
		PostText:         post.PostText,
		PublishedDate:    post.PublishedDate,
		LikesCount:       post.LikesCount,
		CommentsCount:    post.CommentsCount,
		EmbedID:          urlMeta.EmbedID,
		MediaID:          urlMeta.MediaID,
		Resolution:       urlMeta.Resolution,
		Quality:          urlMeta.Quality,
		HasAuthToken:     urlMeta.HasAuthToken,
	}
	if page.Error == "" {
		merged.OpenGraph = page.OpenGraph
		merged.TwitterCard = page.TwitterCard
	}
	return merged
}
