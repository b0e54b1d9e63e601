package scrape

import (
	"encoding/json"
	"errors"
	"html"
	"log"
	"regexp"
	"strings"
	"time"

	"linkvid/internal/browser"
)

// ErrNoVideo is returned when no downloadable video URL can be resolved from
// a post.
var ErrNoVideo = errors.New("no video found in post")

var (
	dataSourcesPattern = regexp.MustCompile(`data-sources="([^"]*)"`)
	dmsSrcPattern      = regexp.MustCompile(`dms-src="([^"]*)"`)
)

// Resolver extracts a downloadable video URL from a post page. Strategies
// are tried in order; the first non-empty result wins.
type Resolver struct {
	WaitTimeout time.Duration // bound on waiting for the <video> element
	RenderDelay time.Duration // fixed wait after the element appears
	logger      *log.Logger
}

// NewResolver creates a Resolver.
func NewResolver(waitTimeout, renderDelay time.Duration, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{WaitTimeout: waitTimeout, RenderDelay: renderDelay, logger: logger}
}

// Resolve navigates to the post and returns the video source URL, or
// ErrNoVideo if the post has no resolvable video. Internal failures degrade
// to ErrNoVideo with a logged warning; they never propagate.
func (r *Resolver) Resolve(s browser.Session, postURL string) (string, error) {
	if err := s.Navigate(postURL); err != nil {
		r.logger.Printf("Could not navigate to post %s: %v", postURL, err)
		return "", ErrNoVideo
	}

	if err := s.WaitForPresence("video", r.WaitTimeout); err != nil {
		r.logger.Printf("No video element appeared: %v", err)
		return "", ErrNoVideo
	}

	// Fixed wait for the dynamic video source to populate. Not a polling
	// loop: one sleep of RenderDelay, matching observed page behavior.
	time.Sleep(r.RenderDelay)

	videos, err := s.FindAll("video")
	if err != nil || len(videos) == 0 {
		r.logger.Printf("Video element vanished after wait")
		return "", ErrNoVideo
	}

	if src, err := videos[0].Attribute("src"); err == nil && src != nil && *src != "" {
		return *src, nil
	}

	r.logger.Printf("Direct video source not found, searching page source")
	source, err := s.PageSource()
	if err != nil {
		r.logger.Printf("Could not read page source: %v", err)
		return "", ErrNoVideo
	}

	if url := r.fromDataSources(source); url != "" {
		return url, nil
	}
	if url := fromDMSSrc(source); url != "" {
		return url, nil
	}

	r.logger.Printf("Could not extract video URL from %s", postURL)
	return "", ErrNoVideo
}

// fromDataSources parses the data-sources attribute embedded in the page: an
// HTML-escaped JSON array of {src, quality, ...} objects. The entry with the
// highest numeric quality wins; missing or non-numeric quality counts as 0,
// and the first maximal entry wins ties.
func (r *Resolver) fromDataSources(markup string) string {
	match := dataSourcesPattern.FindStringSubmatch(markup)
	if match == nil {
		return ""
	}

	var sources []map[string]any
	if err := json.Unmarshal([]byte(html.UnescapeString(match[1])), &sources); err != nil {
		r.logger.Printf("Could not parse data-sources payload: %v", err)
		return ""
	}
	if len(sources) == 0 {
		return ""
	}

	best := sources[0]
	bestQuality := sourceQuality(sources[0])
	for _, source := range sources[1:] {
		if q := sourceQuality(source); q > bestQuality {
			best, bestQuality = source, q
		}
	}

	src, _ := best["src"].(string)
	return src
}

func sourceQuality(source map[string]any) float64 {
	q, ok := source["quality"].(float64)
	if !ok {
		return 0
	}
	return q
}

// fromDMSSrc scans for a dms-src attribute, unescaping &amp; only.
func fromDMSSrc(markup string) string {
	match := dmsSrcPattern.FindStringSubmatch(markup)
	if match == nil {
		return ""
	}
	return strings.ReplaceAll(match[1], "&amp;", "&")
}
