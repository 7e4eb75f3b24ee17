package feed

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mmcdole/gofeed"

	"TopicCurator/internal/domain"
	"TopicCurator/internal/ports"
)

// RSSSource pulls RSS/Atom feeds grouped by vertical and normalizes
// entries into pipeline items.
type RSSSource struct {
	feeds  map[string][]string
	parser *gofeed.Parser
	logger *slog.Logger
}

var _ ports.ItemSource = (*RSSSource)(nil)

// NewRSSSource wires the vertical → feed-URL map from config.
func NewRSSSource(feeds map[string][]string, logger *slog.Logger) *RSSSource {
	return &RSSSource{
		feeds:  feeds,
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

// Fetch pulls every selected feed. A failing feed is logged and
// skipped; it never aborts the run. Items without text or link are
// dropped here, before they reach the pipeline.
func (s *RSSSource) Fetch(ctx context.Context, verticals []string) ([]domain.Item, error) {
	selected := s.feeds
	if len(verticals) > 0 {
		selected = map[string][]string{}
		for _, vertical := range verticals {
			if urls, ok := s.feeds[vertical]; ok {
				selected[vertical] = urls
			}
		}
	}

	names := make([]string, 0, len(selected))
	for vertical := range selected {
		names = append(names, vertical)
	}
	sort.Strings(names)

	var items []domain.Item
	for _, vertical := range names {
		for _, feedURL := range selected[vertical] {
			parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
			if err != nil {
				if s.logger != nil {
					s.logger.Warn("feed fetch failed", "url", feedURL, "error", err)
				}
				continue
			}

			for _, entry := range parsed.Items {
				item := domain.Item{
					Title:    entry.Title,
					Text:     entry.Description,
					Link:     entry.Link,
					Vertical: vertical,
				}
				if item.Text == "" {
					item.Text = entry.Content
				}
				if entry.PublishedParsed != nil {
					item.PublishedAt = *entry.PublishedParsed
				}
				if item.Usable() {
					items = append(items, item)
				}
			}
		}
	}

	return items, nil
}
