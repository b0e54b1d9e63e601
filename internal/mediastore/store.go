// Package mediastore persists downloaded video files under the media root.
package mediastore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const videoDir = "linkedin_videos"

// Store is a filesystem blob store for downloaded videos.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// SaveVideo moves the downloaded temp file into the store under a fresh
// name and returns the path relative to the store root.
func (s *Store) SaveVideo(tempPath string) (string, error) {
	rel := filepath.Join(videoDir, uuid.New().String()+".mp4")
	dest := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	// Rename when possible, copy across filesystems
	if err := os.Rename(tempPath, dest); err != nil {
		if err := copyFile(tempPath, dest); err != nil {
			return "", err
		}
		os.Remove(tempPath)
	}
	return rel, nil
}

// Path resolves a stored relative path to an absolute one.
func (s *Store) Path(rel string) string {
	return filepath.Join(s.root, rel)
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(rel string) error {
	err := os.Remove(s.Path(rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy video file: %w", err)
	}
	return nil
}
