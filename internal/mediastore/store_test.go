package mediastore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveVideo(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	temp := filepath.Join(t.TempDir(), "download.mp4")
	if err := os.WriteFile(temp, []byte("video-bytes"), 0644); err != nil {
		t.Fatalf("Writing temp file failed: %v", err)
	}

	rel, err := store.SaveVideo(temp)
	if err != nil {
		t.Fatalf("SaveVideo failed: %v", err)
	}
	if !strings.HasPrefix(rel, "linkedin_videos/") || !strings.HasSuffix(rel, ".mp4") {
		t.Errorf("Relative path = %q, want linkedin_videos/<uuid>.mp4", rel)
	}

	data, err := os.ReadFile(store.Path(rel))
	if err != nil {
		t.Fatalf("Stored file unreadable: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("Stored content = %q", data)
	}

	if _, err := os.Stat(temp); !os.IsNotExist(err) {
		t.Error("Temp file still present after SaveVideo")
	}
}

func TestRemove(t *testing.T) {
	store := NewStore(t.TempDir())

	temp := filepath.Join(t.TempDir(), "download.mp4")
	if err := os.WriteFile(temp, []byte("x"), 0644); err != nil {
		t.Fatalf("Writing temp file failed: %v", err)
	}
	rel, err := store.SaveVideo(temp)
	if err != nil {
		t.Fatalf("SaveVideo failed: %v", err)
	}

	if err := store.Remove(rel); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	// Removing again is a no-op
	if err := store.Remove(rel); err != nil {
		t.Fatalf("Second Remove failed: %v", err)
	}
}
