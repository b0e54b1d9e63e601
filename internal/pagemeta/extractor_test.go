package pagemeta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title> Example Post | LinkedIn </title>
<meta name="description" content="A post about things">
<meta name="keywords" content="video,linkedin">
<meta name="author" content="Jane Example">
<meta property="og:title" content="Example Post">
<meta property="og:type" content="video.other">
<meta property="og:video:url" content="https://cdn.example.com/v.mp4">
<meta name="twitter:card" content="player">
<meta name="twitter:title" content="Example Post">
</head>
<body><p>hello</p></body>
</html>`

func TestExtract_ParsesTitleAndMetaTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != defaultUserAgent {
			t.Errorf("User-Agent = %q, want the browser user agent", ua)
		}
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	meta := NewExtractor(srv.Client()).Extract(context.Background(), srv.URL)

	if meta.Error != "" {
		t.Fatalf("Extract reported error: %s", meta.Error)
	}
	if meta.Title == nil || *meta.Title != "Example Post | LinkedIn" {
		t.Errorf("Title = %v, want trimmed page title", meta.Title)
	}
	if meta.Description == nil || *meta.Description != "A post about things" {
		t.Errorf("Description = %v, want allow-listed meta value", meta.Description)
	}
	if meta.Keywords == nil || *meta.Keywords != "video,linkedin" {
		t.Errorf("Keywords = %v", meta.Keywords)
	}
	if meta.Author == nil || *meta.Author != "Jane Example" {
		t.Errorf("Author = %v", meta.Author)
	}

	// Every og:* property keyed by its suffix
	wantOG := map[string]string{
		"title":     "Example Post",
		"type":      "video.other",
		"video:url": "https://cdn.example.com/v.mp4",
	}
	for k, v := range wantOG {
		if meta.OpenGraph[k] != v {
			t.Errorf("OpenGraph[%q] = %q, want %q", k, meta.OpenGraph[k], v)
		}
	}
	if len(meta.OpenGraph) != len(wantOG) {
		t.Errorf("OpenGraph has %d entries, want %d: %v", len(meta.OpenGraph), len(wantOG), meta.OpenGraph)
	}

	// Every twitter:* name keyed by its suffix
	wantTwitter := map[string]string{"card": "player", "title": "Example Post"}
	for k, v := range wantTwitter {
		if meta.TwitterCard[k] != v {
			t.Errorf("TwitterCard[%q] = %q, want %q", k, meta.TwitterCard[k], v)
		}
	}
	if len(meta.TwitterCard) != len(wantTwitter) {
		t.Errorf("TwitterCard has %d entries, want %d: %v", len(meta.TwitterCard), len(wantTwitter), meta.TwitterCard)
	}
}

func TestExtract_MissingTitleIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head></head><body></body></html>`))
	}))
	defer srv.Close()

	meta := NewExtractor(srv.Client()).Extract(context.Background(), srv.URL)
	if meta.Error != "" {
		t.Fatalf("Extract reported error: %s", meta.Error)
	}
	if meta.Title != nil {
		t.Errorf("Title = %q, want nil for a page without <title>", *meta.Title)
	}
}

func TestExtract_HTTPErrorDegradesToErrorResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	meta := NewExtractor(srv.Client()).Extract(context.Background(), srv.URL)
	if meta.Error == "" {
		t.Fatal("Extract did not report the HTTP failure")
	}
	if meta.URL != srv.URL {
		t.Errorf("URL = %q, want %q", meta.URL, srv.URL)
	}
	if meta.Title != nil {
		t.Error("Title set on a failed fetch")
	}
}

func TestExtract_UnreachableHostDegradesToErrorResult(t *testing.T) {
	meta := NewExtractor(nil).Extract(context.Background(), "http://127.0.0.1:1/post")
	if meta.Error == "" {
		t.Fatal("Extract did not report the connection failure")
	}
}

func TestExtract_DefaultsSchemeToHTTPS(t *testing.T) {
	meta := NewExtractor(nil).Extract(context.Background(), "no-such-host.invalid/post")
	if meta.URL != "https://no-such-host.invalid/post" {
		t.Errorf("URL = %q, want https scheme prefixed", meta.URL)
	}
}
