// Package pagemeta extracts link-preview metadata from static HTML. It never
// executes JavaScript; anything that needs a rendered page goes through the
// browser package instead.
package pagemeta

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.110 Safari/537.36"

// PageMetadata is the result of one static page fetch. On fetch failure only
// URL, ExtractedAt and Error are set.
type PageMetadata struct {
	URL         string            `json:"url"`
	ExtractedAt time.Time         `json:"extracted_at"`
	Title       *string           `json:"title"`
	Description *string           `json:"description,omitempty"`
	Keywords    *string           `json:"keywords,omitempty"`
	Author      *string           `json:"author,omitempty"`
	OpenGraph   map[string]string `json:"open_graph"`
	TwitterCard map[string]string `json:"twitter_card"`
	Error       string            `json:"error,omitempty"`
}

// Extractor fetches a URL over plain HTTP and parses its markup.
type Extractor struct {
	client    *http.Client
	userAgent string
}

// NewExtractor creates an Extractor using the given HTTP client. The client
// should carry a bounded timeout; a nil client gets a 10 second one.
func NewExtractor(client *http.Client) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Extractor{client: client, userAgent: defaultUserAgent}
}

// Extract fetches the URL and returns whatever metadata the markup carries.
// Fetch and parse failures are reported in the result, never as an error that
// aborts the caller.
func (e *Extractor) Extract(ctx context.Context, rawURL string) *PageMetadata {
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Scheme == "" {
		rawURL = "https://" + rawURL
	}

	meta := &PageMetadata{
		URL:         rawURL,
		ExtractedAt: time.Now(),
		OpenGraph:   map[string]string{},
		TwitterCard: map[string]string{},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		meta.Error = err.Error()
		return meta
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		meta.Error = err.Error()
		return meta
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		meta.Error = fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
		return meta
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		meta.Error = err.Error()
		return meta
	}

	if title := doc.Find("title").First(); title.Length() > 0 {
		text := strings.TrimSpace(title.Text())
		meta.Title = &text
	}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		property, _ := s.Attr("property")
		content, hasContent := s.Attr("content")
		if !hasContent {
			return
		}

		switch {
		case strings.HasPrefix(property, "og:"):
			meta.OpenGraph[strings.TrimPrefix(property, "og:")] = content
		case strings.HasPrefix(name, "twitter:"):
			meta.TwitterCard[strings.TrimPrefix(name, "twitter:")] = content
		}

		// Allow-listed plain meta names
		key := name
		if key == "" {
			key = property
		}
		switch key {
		case "description":
			meta.Description = &content
		case "keywords":
			meta.Keywords = &content
		case "author":
			meta.Author = &content
		}
	})

	return meta
}
