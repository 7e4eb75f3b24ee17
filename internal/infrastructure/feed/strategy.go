package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"TopicCurator/internal/config"
	"TopicCurator/internal/domain"
	"TopicCurator/internal/ports"
	"TopicCurator/internal/scanner"
)

// StrategySource implements ItemSource via registered site scanners.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	now      func() time.Time
	logger   *slog.Logger
}

var _ ports.ItemSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, logger *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// Fetch scans every selected site for items published today. A failing
// site is logged and skipped.
func (s *StrategySource) Fetch(ctx context.Context, verticals []string) ([]domain.Item, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	want := map[string]bool{}
	for _, vertical := range verticals {
		want[vertical] = true
	}

	day := s.now()
	var aggregated []domain.Item
	for _, site := range s.sites {
		if len(want) > 0 && !want[site.Vertical] {
			continue
		}

		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		req := scanner.Request{
			Day:        day,
			SiteName:   site.Name,
			Vertical:   site.Vertical,
			Options:    site.Options,
			Categories: toScannerCategories(site.Categories),
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("site scan failed", "site", site.Name, "error", err)
			}
			continue
		}

		aggregated = append(aggregated, results...)
	}

	return aggregated, nil
}

func toScannerCategories(cfg []config.CategoryConfig) []scanner.Category {
	categories := make([]scanner.Category, 0, len(cfg))
	for _, cat := range cfg {
		categories = append(categories, scanner.Category{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return categories
}

// Multi fans out to several sources and concatenates their items. A
// failing source is logged and skipped so one bad provider cannot
// starve the others.
type Multi struct {
	sources []ports.ItemSource
	logger  *slog.Logger
}

var _ ports.ItemSource = (*Multi)(nil)

// NewMulti combines any number of item sources.
func NewMulti(logger *slog.Logger, sources ...ports.ItemSource) *Multi {
	return &Multi{sources: sources, logger: logger}
}

// Fetch aggregates items across all configured sources.
func (m *Multi) Fetch(ctx context.Context, verticals []string) ([]domain.Item, error) {
	var items []domain.Item
	for _, source := range m.sources {
		results, err := source.Fetch(ctx, verticals)
		if err != nil {
			if m.logger != nil {
				m.logger.Warn("item source failed", "error", err)
			}
			continue
		}
		items = append(items, results...)
	}
	return items, nil
}
