package sections

import (
	"context"
	"errors"
	"testing"
	"time"

	"TopicCurator/internal/domain"
)

func rewriterMemory() domain.TopicMemory {
	memory := domain.NewTopicMemory("topic-1", time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC))
	memory.CoreProposal = "The method relies on sparse attention."
	return memory
}

func TestBuildMemoryUpdate(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{responses: []string{
		"NEW_BELIEF: The method now combines sparse attention with routing.  ",
	}}
	rw := NewRewriter(oracle)

	proposal, err := rw.BuildMemoryUpdate(context.Background(), rewriterMemory(),
		domain.SectionCoreProposal, "strong new evidence", "article text", "https://example.org/a")
	if err != nil {
		t.Fatalf("BuildMemoryUpdate error: %v", err)
	}

	if proposal.TopicID != "topic-1" {
		t.Fatalf("unexpected topic id: %s", proposal.TopicID)
	}
	if proposal.OldBelief != "The method relies on sparse attention." {
		t.Fatalf("unexpected old belief: %q", proposal.OldBelief)
	}
	if proposal.NewBelief != "The method now combines sparse attention with routing." {
		t.Fatalf("new belief not trimmed: %q", proposal.NewBelief)
	}
	if proposal.WhyThisMatters != "strong new evidence" {
		t.Fatalf("unexpected justification: %q", proposal.WhyThisMatters)
	}
}

func TestBuildMemoryUpdateMissingMarker(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{responses: []string{
		"Here is the updated text without the required prefix.",
	}}
	rw := NewRewriter(oracle)

	_, err := rw.BuildMemoryUpdate(context.Background(), rewriterMemory(),
		domain.SectionCoreProposal, "why", "article text", "https://example.org/a")
	if !errors.Is(err, ErrMalformedRewrite) {
		t.Fatalf("expected ErrMalformedRewrite, got %v", err)
	}
	if oracle.calls != 1 {
		t.Fatalf("rewrite must not retry, got %d calls", oracle.calls)
	}
}

func TestBuildMemoryUpdateUnknownSection(t *testing.T) {
	t.Parallel()

	rw := NewRewriter(&scriptedOracle{})

	_, err := rw.BuildMemoryUpdate(context.Background(), rewriterMemory(),
		domain.Section("made_up"), "why", "article text", "https://example.org/a")
	if err == nil {
		t.Fatalf("expected error for unknown section")
	}
}
