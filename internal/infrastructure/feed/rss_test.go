package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Research Feed</title>
    <item>
      <title>Sparse Attention at Scale</title>
      <link>https://example.org/sparse</link>
      <description>We propose a sparse attention mechanism.</description>
      <pubDate>Mon, 10 Nov 2025 08:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Entry Without Body</title>
      <link>https://example.org/empty</link>
    </item>
  </channel>
</rss>`

func TestRSSSourceFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	source := NewRSSSource(map[string][]string{"ai": {server.URL}}, nil)

	items, err := source.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 usable item, got %d", len(items))
	}
	if items[0].Link != "https://example.org/sparse" {
		t.Fatalf("unexpected link: %s", items[0].Link)
	}
	if items[0].Text != "We propose a sparse attention mechanism." {
		t.Fatalf("unexpected text: %s", items[0].Text)
	}
	if items[0].Vertical != "ai" {
		t.Fatalf("unexpected vertical: %s", items[0].Vertical)
	}
	if items[0].PublishedAt.IsZero() {
		t.Fatalf("published date not parsed")
	}
}

func TestRSSSourceFetchFiltersVerticals(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	source := NewRSSSource(map[string][]string{
		"ai":      {server.URL},
		"biotech": {server.URL},
	}, nil)

	items, err := source.Fetch(context.Background(), []string{"biotech"})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	for _, item := range items {
		if item.Vertical != "biotech" {
			t.Fatalf("item outside requested vertical: %s", item.Vertical)
		}
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item from the selected vertical, got %d", len(items))
	}
}

func TestRSSSourceFetchSkipsFailingFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer broken.Close()

	source := NewRSSSource(map[string][]string{"ai": {broken.URL, server.URL}}, nil)

	items, err := source.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("a failing feed must be skipped, got %d items", len(items))
	}
}
