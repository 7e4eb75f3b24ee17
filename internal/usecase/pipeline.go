package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"TopicCurator/internal/domain"
	"TopicCurator/internal/ports"
	"TopicCurator/internal/review"
	"TopicCurator/internal/routing"
	"TopicCurator/internal/sections"
)

// PipelineDeps wires all collaborators into the ingestion pipeline.
type PipelineDeps struct {
	Source   ports.ItemSource
	Topics   ports.TopicStore
	Memories ports.MemoryStore
	Log      ports.DecisionLog
	Router   *routing.Router
	Proposer *routing.Proposer
	Selector *sections.Selector
	Rewriter *sections.Rewriter
	Review   *review.Manager
	Logger   *slog.Logger
}

// Pipeline implements the article ingestion workflow: route to a topic,
// detect the impacted belief section, draft a rewrite, and hand the
// resulting proposal to the review lifecycle.
type Pipeline struct {
	source   ports.ItemSource
	topics   ports.TopicStore
	memories ports.MemoryStore
	log      ports.DecisionLog
	router   *routing.Router
	proposer *routing.Proposer
	selector *sections.Selector
	rewriter *sections.Rewriter
	review   *review.Manager
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:   deps.Source,
		topics:   deps.Topics,
		memories: deps.Memories,
		log:      deps.Log,
		router:   deps.Router,
		proposer: deps.Proposer,
		selector: deps.Selector,
		rewriter: deps.Rewriter,
		review:   deps.Review,
		logger:   deps.Logger,
	}
}

// ProcessBatch fetches items from the source and ingests each one.
// Per-item failures are reported and skipped; they never stop the batch.
func (p *Pipeline) ProcessBatch(ctx context.Context, verticals []string) error {
	if p.source == nil {
		return nil
	}

	items, err := p.source.Fetch(ctx, verticals)
	if err != nil {
		return fmt.Errorf("fetch items: %w", err)
	}
	p.debug("discovery fetched items", "count", len(items))

	for _, item := range items {
		if !item.Usable() {
			continue
		}
		if err := p.ProcessItem(ctx, item); err != nil {
			if p.logger != nil {
				p.logger.Error("ingestion failed", "link", item.Link, "error", err)
			}
		}
	}
	return nil
}

// ProcessItem runs the full ingestion state machine for one article.
func (p *Pipeline) ProcessItem(ctx context.Context, item domain.Item) error {
	if p.log != nil {
		seen, err := p.log.SeenSource(ctx, item.Link)
		if err != nil {
			return fmt.Errorf("dedup check: %w", err)
		}
		if seen {
			p.debug("source already reviewed", "link", item.Link)
			return nil
		}
	}

	topicID, reason, err := p.router.Route(ctx, item.Text, item.Vertical)
	if err != nil {
		return fmt.Errorf("route article: %w", err)
	}
	if topicID == "" {
		p.debug("no topic match", "reason", reason)
		return p.proposeNewTopic(ctx, item)
	}

	memory, err := p.memories.LoadMemory(ctx, topicID)
	if err != nil {
		return fmt.Errorf("load topic memory: %w", err)
	}
	if memory == nil {
		return fmt.Errorf("topic %s exists but topic memory is missing", topicID)
	}

	candidates := sections.CandidateSections(item.Text)
	if len(candidates) == 0 {
		// No heuristic signal on an existing topic: the article still
		// gets a chance to spawn a new topic.
		return p.proposeNewTopic(ctx, item)
	}

	section, justification, err := p.selector.Select(ctx, item.Text, candidates, memory.Snapshot())
	if err != nil {
		return fmt.Errorf("select section: %w", err)
	}
	if section == "" {
		p.debug("no meaningful memory update", "reason", justification)
		return nil
	}

	proposal, err := p.rewriter.BuildMemoryUpdate(ctx, *memory, section, justification, item.Text, item.Link)
	if err != nil {
		return fmt.Errorf("build memory update: %w", err)
	}

	return p.submit(ctx, *proposal)
}

// proposeNewTopic runs the new-topic flow for an unrouted article. A
// declined proposal drops the article silently.
func (p *Pipeline) proposeNewTopic(ctx context.Context, item domain.Item) error {
	topics, err := p.topics.TopicsByVertical(ctx, item.Vertical)
	if err != nil {
		return fmt.Errorf("fetch topics: %w", err)
	}
	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, t.Name)
	}

	proposal, err := p.proposer.Propose(ctx, item.Text, item.Vertical, names, item.Link)
	if err != nil {
		return fmt.Errorf("propose topic: %w", err)
	}
	if proposal == nil {
		p.debug("article dropped without proposal", "link", item.Link)
		return nil
	}

	return p.submit(ctx, *proposal)
}

func (p *Pipeline) submit(ctx context.Context, proposal domain.Proposal) error {
	pendingID, err := p.review.Submit(ctx, proposal)
	if err != nil {
		return fmt.Errorf("submit proposal: %w", err)
	}
	if err := p.review.Notify(ctx, proposal, pendingID); err != nil {
		return fmt.Errorf("notify proposal %s: %w", pendingID, err)
	}
	return nil
}

func (p *Pipeline) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
