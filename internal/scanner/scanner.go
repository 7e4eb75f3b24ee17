package scanner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"TopicCurator/internal/domain"
)

// Category is one concrete listing endpoint within a site, taken from
// config (for arXiv, a subject category URL).
type Category struct {
	Name string
	URL  string
}

// Request carries everything a scanner needs for one pass. Vertical is
// stamped onto every produced item so routing downstream knows which
// taxonomy slice the article belongs to.
type Request struct {
	Day        time.Time
	SiteName   string
	Vertical   string
	Categories []Category
	Options    map[string]string
}

// Scanner is a single site-scraping strategy.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Item, error)
}

// Registry maps strategy names from config onto implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a strategy.
func (r *Registry) Register(s Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[s.Name()] = s
}

// Resolve returns a strategy by name.
func (r *Registry) Resolve(name string) (Scanner, error) {
	s, ok := r.scanners[name]
	if !ok {
		return nil, fmt.Errorf("scanner %s is not registered: known scanners are %v", name, r.Names())
	}
	return s, nil
}

// Names lists registered strategies in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
