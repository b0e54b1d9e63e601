package models

// JobMetadata holds the detailed metadata collected for one job. At most one
// row exists per job; it is created lazily and only ever merged into.
type JobMetadata struct {
	JobID string `json:"-"`

	// Author info
	AuthorName       *string `json:"author_name"`
	AuthorHeadline   *string `json:"author_headline"`
	AuthorProfileURL *string `json:"author_profile_url"`
	AuthorUsername   *string `json:"author_username"`

	// Post info
	PostText      *string `json:"post_text"`
	PublishedDate *string `json:"published_date"`
	LikesCount    *string `json:"likes_count"`
	CommentsCount *string `json:"comments_count"`

	// Derived from the resolved video URL's query parameters
	EmbedID      *string `json:"embed_id"`
	MediaID      *string `json:"media_id"`
	Resolution   *string `json:"resolution"`
	Quality      *string `json:"quality"`
	HasAuthToken bool    `json:"has_auth_token"`

	// Captured verbatim from the page's meta tags
	OpenGraph   map[string]string `json:"open_graph"`
	TwitterCard map[string]string `json:"twitter_card"`
}

// Merge copies every non-nil field of other onto m. Field by field, last
// writer wins; nil incoming values leave the stored value alone.
func (m *JobMetadata) Merge(other *JobMetadata) {
	if other == nil {
		return
	}
	if other.AuthorName != nil {
		m.AuthorName = other.AuthorName
	}
	if other.AuthorHeadline != nil {
		m.AuthorHeadline = other.AuthorHeadline
	}
	if other.AuthorProfileURL != nil {
		m.AuthorProfileURL = other.AuthorProfileURL
	}
	if other.AuthorUsername != nil {
		m.AuthorUsername = other.AuthorUsername
	}
	if other.PostText != nil {
		m.PostText = other.PostText
	}
	if other.PublishedDate != nil {
		m.PublishedDate = other.PublishedDate
	}
	if other.LikesCount != nil {
		m.LikesCount = other.LikesCount
	}
	if other.CommentsCount != nil {
		m.CommentsCount = other.CommentsCount
	}
	if other.EmbedID != nil {
		m.EmbedID = other.EmbedID
	}
	if other.MediaID != nil {
		m.MediaID = other.MediaID
	}
	if other.Resolution != nil {
		m.Resolution = other.Resolution
	}
	if other.Quality != nil {
		m.Quality = other.Quality
	}
	if other.HasAuthToken {
		m.HasAuthToken = true
	}
	if other.OpenGraph != nil {
		m.OpenGraph = other.OpenGraph
	}
	if other.TwitterCard != nil {
		m.TwitterCard = other.TwitterCard
	}
}
