package storage

import (
	"context"
	"path/filepath"
	"testing"

	"linkvid/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestJob(t *testing.T, repo *JobRepository) *models.Job {
	t.Helper()
	job := &models.Job{PostURL: "https://www.linkedin.com/posts/example_123-activity-456"}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	return job
}

func TestJobRepository_CreateAndGet(t *testing.T) {
	repo := NewJobRepository(openTestDB(t))
	ctx := context.Background()

	job := createTestJob(t, repo)
	if job.ID == "" {
		t.Fatal("Create did not assign an id")
	}
	if job.Status != models.JobStatusPending {
		t.Errorf("New job status = %q, want %q", job.Status, models.JobStatusPending)
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID returned nil for existing job")
	}
	if got.PostURL != job.PostURL {
		t.Errorf("PostURL = %q, want %q", got.PostURL, job.PostURL)
	}

	missing, err := repo.GetByID(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("GetByID for unknown id failed: %v", err)
	}
	if missing != nil {
		t.Error("GetByID returned a job for an unknown id")
	}
}

func TestJobRepository_StatusNeverRegresses(t *testing.T) {
	repo := NewJobRepository(openTestDB(t))
	ctx := context.Background()

	t.Run("completed job stays completed", func(t *testing.T) {
		job := createTestJob(t, repo)
		if err := repo.MarkProcessing(ctx, job.ID); err != nil {
			t.Fatalf("MarkProcessing failed: %v", err)
		}
		if err := repo.Complete(ctx, job.ID); err != nil {
			t.Fatalf("Complete failed: %v", err)
		}

		if err := repo.MarkProcessing(ctx, job.ID); err == nil {
			t.Error("MarkProcessing succeeded on a completed job")
		}
		if err := repo.Fail(ctx, job.ID, "late failure"); err == nil {
			t.Error("Fail succeeded on a completed job")
		}

		got, _ := repo.GetByID(ctx, job.ID)
		if got.Status != models.JobStatusCompleted {
			t.Errorf("Status = %q, want %q", got.Status, models.JobStatusCompleted)
		}
	})

	t.Run("cannot complete without processing", func(t *testing.T) {
		job := createTestJob(t, repo)
		if err := repo.Complete(ctx, job.ID); err == nil {
			t.Error("Complete succeeded on a pending job")
		}
	})

	t.Run("cannot fail without processing", func(t *testing.T) {
		job := createTestJob(t, repo)
		if err := repo.Fail(ctx, job.ID, "early failure"); err == nil {
			t.Error("Fail succeeded on a pending job")
		}

		got, _ := repo.GetByID(ctx, job.ID)
		if got.Status != models.JobStatusPending {
			t.Errorf("Status = %q, want %q", got.Status, models.JobStatusPending)
		}
	})

	t.Run("cannot pick up a job twice", func(t *testing.T) {
		job := createTestJob(t, repo)
		if err := repo.MarkProcessing(ctx, job.ID); err != nil {
			t.Fatalf("MarkProcessing failed: %v", err)
		}
		if err := repo.MarkProcessing(ctx, job.ID); err == nil {
			t.Error("MarkProcessing succeeded twice for the same job")
		}
	})

	t.Run("failed job keeps its message", func(t *testing.T) {
		job := createTestJob(t, repo)
		if err := repo.MarkProcessing(ctx, job.ID); err != nil {
			t.Fatalf("MarkProcessing failed: %v", err)
		}
		if err := repo.Fail(ctx, job.ID, "Failed to download video"); err != nil {
			t.Fatalf("Fail failed: %v", err)
		}

		got, _ := repo.GetByID(ctx, job.ID)
		if got.Status != models.JobStatusFailed {
			t.Errorf("Status = %q, want %q", got.Status, models.JobStatusFailed)
		}
		if got.ErrorMessage == nil || *got.ErrorMessage != "Failed to download video" {
			t.Errorf("ErrorMessage = %v, want %q", got.ErrorMessage, "Failed to download video")
		}
	})

	t.Run("failing clears the video columns", func(t *testing.T) {
		job := createTestJob(t, repo)
		if err := repo.MarkProcessing(ctx, job.ID); err != nil {
			t.Fatalf("MarkProcessing failed: %v", err)
		}
		if err := repo.SetVideoFile(ctx, job.ID, "linkedin_videos/x.mp4", 2.5); err != nil {
			t.Fatalf("SetVideoFile failed: %v", err)
		}
		if err := repo.Fail(ctx, job.ID, "Failed to download video"); err != nil {
			t.Fatalf("Fail failed: %v", err)
		}

		got, _ := repo.GetByID(ctx, job.ID)
		if got.VideoFile != nil || got.FileSize != nil {
			t.Errorf("Failed job kept video columns: file=%v size=%v", got.VideoFile, got.FileSize)
		}
	})
}

func TestJobRepository_NextPending(t *testing.T) {
	repo := NewJobRepository(openTestDB(t))
	ctx := context.Background()

	if job, err := repo.NextPending(ctx); err != nil || job != nil {
		t.Fatalf("NextPending on empty table = (%v, %v), want (nil, nil)", job, err)
	}

	first := createTestJob(t, repo)
	second := createTestJob(t, repo)

	got, err := repo.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Fatalf("NextPending returned %v, want oldest job %s", got, first.ID)
	}

	if err := repo.MarkProcessing(ctx, first.ID); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}

	got, err = repo.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if got == nil || got.ID != second.ID {
		t.Fatalf("NextPending returned %v, want %s", got, second.ID)
	}
}

func TestJobRepository_UpdatedAtBumpsOnMutation(t *testing.T) {
	repo := NewJobRepository(openTestDB(t))
	ctx := context.Background()

	job := createTestJob(t, repo)
	title := "Post title"
	if err := repo.SetPageMetadata(ctx, job.ID, &title, nil); err != nil {
		t.Fatalf("SetPageMetadata failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, job.ID)
	if got.Title == nil || *got.Title != title {
		t.Errorf("Title = %v, want %q", got.Title, title)
	}
	if got.ExtractedAt == nil {
		t.Error("ExtractedAt not set by SetPageMetadata")
	}
	if !got.UpdatedAt.After(job.UpdatedAt) && !got.UpdatedAt.Equal(job.UpdatedAt) {
		t.Errorf("UpdatedAt moved backwards: %v -> %v", job.UpdatedAt, got.UpdatedAt)
	}
}

func TestJobRepository_SetVideoFile(t *testing.T) {
	repo := NewJobRepository(openTestDB(t))
	ctx := context.Background()

	job := createTestJob(t, repo)
	if err := repo.SetVideoFile(ctx, job.ID, "linkedin_videos/abc.mp4", 12.5); err != nil {
		t.Fatalf("SetVideoFile failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, job.ID)
	if got.VideoFile == nil || *got.VideoFile != "linkedin_videos/abc.mp4" {
		t.Errorf("VideoFile = %v, want linkedin_videos/abc.mp4", got.VideoFile)
	}
	if got.FileSize == nil || *got.FileSize != 12.5 {
		t.Errorf("FileSize = %v, want 12.5", got.FileSize)
	}
}
