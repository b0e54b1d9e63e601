// Package scrape probes a rendered LinkedIn post through a browser session.
// Every lookup is best-effort: a missed selector leaves its field nil and
// never aborts the probe.
package scrape

import (
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"linkvid/internal/browser"
)

// Post page selectors. LinkedIn renames these occasionally; a miss only
// costs the corresponding field.
const (
	selAuthorName     = ".update-components-actor__name"
	selAuthorHeadline = ".update-components-actor__description"
	selAuthorProfile  = ".update-components-actor__container a"
	selPostText       = ".update-components-text"
	selPublishedDate  = ".update-components-actor__sub-description"
	selLikesCount     = ".social-details-social-counts__reactions-count"
	selCommentsCount  = ".social-details-social-counts__comments"
)

const authorWaitTimeout = 5 * time.Second

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// PostMetadata is the field set a probe can collect from a post page.
type PostMetadata struct {
	PostURL          string
	AuthorName       *string
	AuthorHeadline   *string
	AuthorProfileURL *string
	AuthorUsername   *string
	PostText         *string
	PublishedDate    *string
	LikesCount       *string
	CommentsCount    *string
	Hashtags         []string
}

// Prober extracts post metadata from an active browser session.
type Prober struct {
	logger *log.Logger
}

// NewProber creates a Prober logging to the given logger.
func NewProber(logger *log.Logger) *Prober {
	if logger == nil {
		logger = log.Default()
	}
	return &Prober{logger: logger}
}

// ProbePost navigates the session to the post and collects whatever the
// selectors can find. It always returns a result; missing elements yield nil
// fields.
func (p *Prober) ProbePost(s browser.Session, postURL string) *PostMetadata {
	meta := &PostMetadata{PostURL: postURL}
	meta.AuthorUsername = UsernameFromPostURL(postURL)

	if err := s.Navigate(postURL); err != nil {
		p.logger.Printf("Could not navigate to post %s: %v", postURL, err)
		return meta
	}

	p.probeAuthor(s, meta)
	p.probeText(s, meta)
	p.probeStats(s, meta)
	return meta
}

func (p *Prober) probeAuthor(s browser.Session, meta *PostMetadata) {
	if err := s.WaitForPresence(selAuthorName, authorWaitTimeout); err != nil {
		p.logger.Printf("Could not extract author details: %v", err)
		return
	}
	name, ok := elementText(s, selAuthorName)
	if !ok {
		p.logger.Printf("Could not extract author details: %s missing", selAuthorName)
		return
	}
	meta.AuthorName = &name

	if headline, ok := elementText(s, selAuthorHeadline); ok {
		meta.AuthorHeadline = &headline
	}
	if href, ok := elementAttr(s, selAuthorProfile, "href"); ok {
		meta.AuthorProfileURL = &href
	}
}

func (p *Prober) probeText(s browser.Session, meta *PostMetadata) {
	text, ok := elementText(s, selPostText)
	if !ok {
		p.logger.Printf("Could not extract post text")
		return
	}
	meta.PostText = &text
	meta.Hashtags = ExtractHashtags(text)
}

func (p *Prober) probeStats(s browser.Session, meta *PostMetadata) {
	date, ok := elementText(s, selPublishedDate)
	if !ok {
		p.logger.Printf("Could not extract post stats")
		return
	}
	meta.PublishedDate = &date

	if likes, ok := elementText(s, selLikesCount); ok {
		meta.LikesCount = &likes
	}
	if comments, ok := elementText(s, selCommentsCount); ok {
		meta.CommentsCount = &comments
	}
}

// ExtractHashtags scans text for #word tokens, in order of appearance.
func ExtractHashtags(text string) []string {
	var tags []string
	for _, match := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tags = append(tags, match[1])
	}
	return tags
}

// UsernameFromPostURL derives the author username from the post URL's third
// path segment ("/posts/<username>_...") when present.
func UsernameFromPostURL(postURL string) *string {
	parsed, err := url.Parse(postURL)
	if err != nil {
		return nil
	}
	parts := strings.Split(parsed.Path, "/")
	if len(parts) > 2 && parts[2] != "" {
		return &parts[2]
	}
	return nil
}

func elementText(s browser.Session, selector string) (string, bool) {
	el, err := s.Find(selector)
	if err != nil {
		return "", false
	}
	text, err := el.Text()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(text), true
}

func elementAttr(s browser.Session, selector, name string) (string, bool) {
	el, err := s.Find(selector)
	if err != nil {
		return "", false
	}
	value, err := el.Attribute(name)
	if err != nil || value == nil {
		return "", false
	}
	return *value, true
}
