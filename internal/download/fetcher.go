// Package download streams resolved video URLs to local files.
package download

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

const chunkSize = 1024 * 1024 // 1 MiB

// Fetcher downloads video files over HTTP.
type Fetcher struct {
	client *http.Client
	logger *log.Logger
}

// NewFetcher creates a Fetcher using the given client. A nil client gets a
// long timeout suitable for large files.
func NewFetcher(client *http.Client, logger *log.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Minute}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{client: client, logger: logger}
}

// Fetch streams the video to outputPath in 1 MiB chunks and returns the
// written size in MB. On any failure the partial file is removed and zero
// size is returned; success is never partially reported.
func (f *Fetcher) Fetch(ctx context.Context, videoURL, outputPath string) (float64, error) {
	if videoURL == "" {
		return 0, fmt.Errorf("no video URL to download")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}

	written, err := f.copyChunks(file, resp.Body, resp.ContentLength)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written == 0 {
		err = fmt.Errorf("empty response body")
	}
	if err != nil {
		os.Remove(outputPath)
		return 0, err
	}

	sizeMB := float64(written) / (1024 * 1024)
	f.logger.Printf("Video downloaded to %s (%.2fMB)", outputPath, sizeMB)
	return sizeMB, nil
}

// copyChunks streams body to dst, logging progress at 25% crossings when the
// total size is known.
func (f *Fetcher) copyChunks(dst io.Writer, body io.Reader, total int64) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	lastReported := 0

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, fmt.Errorf("failed to write video file: %w", err)
			}
			written += int64(n)

			if total > 0 {
				percent := int(100 * written / total)
				if quarter := percent / 25 * 25; quarter > lastReported {
					lastReported = quarter
					f.logger.Printf("Download progress: %d%% (%.1fMB / %.1fMB)",
						quarter, float64(written)/(1024*1024), float64(total)/(1024*1024))
				}
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("failed to read video stream: %w", readErr)
		}
	}
}
