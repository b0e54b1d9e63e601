package scrape

import "net/url"

// VideoURLMetadata is derived from the resolved video URL's query string.
type VideoURLMetadata struct {
	EmbedID      *string
	MediaID      *string
	Resolution   *string
	Quality      *string
	HasAuthToken bool
}

// ParseVideoURLMetadata reads the known query parameters off a resolved
// video URL. Unparseable URLs yield an empty result.
func ParseVideoURLMetadata(videoURL string) *VideoURLMetadata {
	meta := &VideoURLMetadata{}

	parsed, err := url.Parse(videoURL)
	if err != nil {
		return meta
	}
	query := parsed.Query()

	if v := query.Get("e"); v != "" {
		meta.EmbedID = &v
	}
	if v := query.Get("mediaId"); v != "" {
		meta.MediaID = &v
	}
	if query.Get("authenticationToken") != "" {
		meta.HasAuthToken = true
	}
	if v := query.Get("r"); v != "" {
		meta.Resolution = &v
	} else if v := query.Get("q"); v != "" {
		meta.Quality = &v
	}
	return meta
}
