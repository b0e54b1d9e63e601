package models

// HashTag is a tag scanned from a post's text. Identity is the name; a tag
// may annotate many jobs and a job may carry many tags.
type HashTag struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
}
