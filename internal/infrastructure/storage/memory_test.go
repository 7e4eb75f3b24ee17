package storage

import (
	"context"
	"testing"
	"time"

	"TopicCurator/internal/domain"
)

func TestCreateTopicInitializesMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	if err := store.CreateTopic(ctx, domain.Topic{ID: "t1", Name: "Sparse Attention", Vertical: "ai"}); err != nil {
		t.Fatalf("CreateTopic error: %v", err)
	}

	memory, err := store.LoadMemory(ctx, "t1")
	if err != nil {
		t.Fatalf("LoadMemory error: %v", err)
	}
	if memory == nil {
		t.Fatalf("no memory created alongside topic")
	}
	for _, section := range domain.Sections() {
		belief, err := memory.Belief(section)
		if err != nil {
			t.Fatalf("Belief(%s) error: %v", section, err)
		}
		if belief != domain.NotYetResearched {
			t.Fatalf("section %s not initialized: %q", section, belief)
		}
	}

	if err := store.CreateTopic(ctx, domain.Topic{ID: "t1", Name: "Duplicate", Vertical: "ai"}); err == nil {
		t.Fatalf("expected error on duplicate topic id")
	}
}

func TestLoadMemoryUnknownTopic(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	memory, err := store.LoadMemory(context.Background(), "missing")
	if err != nil {
		t.Fatalf("LoadMemory error: %v", err)
	}
	if memory != nil {
		t.Fatalf("expected nil memory for unknown topic, got %+v", memory)
	}
}

func TestApplyUpdateRewritesOneSection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()
	base := time.Date(2025, time.November, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	if err := store.CreateTopic(ctx, domain.Topic{ID: "t1", Name: "Sparse Attention", Vertical: "ai"}); err != nil {
		t.Fatalf("CreateTopic error: %v", err)
	}

	later := base.Add(time.Hour)
	store.now = func() time.Time { return later }

	err := store.ApplyUpdate(ctx, domain.MemoryUpdateProposal{
		TopicID:   "t1",
		Section:   domain.SectionEnablingConditions,
		NewBelief: "Requires hardware support for block-sparse kernels.",
		Link:      "https://example.org/a",
	})
	if err != nil {
		t.Fatalf("ApplyUpdate error: %v", err)
	}

	memory, err := store.LoadMemory(ctx, "t1")
	if err != nil {
		t.Fatalf("LoadMemory error: %v", err)
	}
	if memory.EnablingConditions != "Requires hardware support for block-sparse kernels." {
		t.Fatalf("section not rewritten: %q", memory.EnablingConditions)
	}
	if memory.CoreProposal != domain.NotYetResearched {
		t.Fatalf("unrelated section changed: %q", memory.CoreProposal)
	}
	if len(memory.ProgressHistory) != 1 {
		t.Fatalf("expected 1 progress entry, got %d", len(memory.ProgressHistory))
	}
	entry := memory.ProgressHistory[0]
	if entry.Section != domain.SectionEnablingConditions || entry.Source != "https://example.org/a" {
		t.Fatalf("unexpected progress entry: %+v", entry)
	}
	if !entry.Timestamp.Equal(later) || !memory.LastUpdated.Equal(later) {
		t.Fatalf("timestamps not advanced: entry=%v last=%v", entry.Timestamp, memory.LastUpdated)
	}
}

func TestApplyUpdateUnknownTopic(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	err := store.ApplyUpdate(context.Background(), domain.MemoryUpdateProposal{
		TopicID:   "missing",
		Section:   domain.SectionCoreProposal,
		NewBelief: "x",
	})
	if err == nil {
		t.Fatalf("expected error for unknown topic")
	}
}

func TestLoadMemoryReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()
	if err := store.CreateTopic(ctx, domain.Topic{ID: "t1", Name: "Sparse Attention", Vertical: "ai"}); err != nil {
		t.Fatalf("CreateTopic error: %v", err)
	}

	memory, _ := store.LoadMemory(ctx, "t1")
	memory.CoreProposal = "mutated outside the store"
	memory.ProgressHistory = append(memory.ProgressHistory, domain.ProgressEntry{Section: domain.SectionCoreProposal})

	fresh, _ := store.LoadMemory(ctx, "t1")
	if fresh.CoreProposal != domain.NotYetResearched {
		t.Fatalf("caller mutation leaked into the store: %q", fresh.CoreProposal)
	}
	if len(fresh.ProgressHistory) != 0 {
		t.Fatalf("history mutation leaked into the store: %d entries", len(fresh.ProgressHistory))
	}
}

func TestSeenSourceChecksBothLogs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	accepted := domain.TopicRoutingProposal{
		SuggestedTopicName: "Mixture Routing",
		Vertical:           "ai",
		Link:               "https://example.org/accepted",
	}
	if err := store.LogAccepted(ctx, accepted); err != nil {
		t.Fatalf("LogAccepted error: %v", err)
	}
	rejected := domain.MemoryUpdateProposal{
		TopicID: "t1",
		Section: domain.SectionCoreProposal,
		Link:    "https://example.org/rejected",
	}
	if err := store.LogRejected(ctx, rejected, "weak source"); err != nil {
		t.Fatalf("LogRejected error: %v", err)
	}

	cases := []struct {
		link string
		want bool
	}{
		{"https://example.org/accepted", true},
		{"https://example.org/rejected", true},
		{"https://example.org/unseen", false},
	}
	for _, tc := range cases {
		got, err := store.SeenSource(ctx, tc.link)
		if err != nil {
			t.Fatalf("SeenSource(%s) error: %v", tc.link, err)
		}
		if got != tc.want {
			t.Fatalf("SeenSource(%s) = %v, want %v", tc.link, got, tc.want)
		}
	}
}

func TestPendingLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemory()

	first := domain.PendingProposal{
		ID:        "p1",
		CreatedAt: time.Date(2025, time.November, 10, 8, 0, 0, 0, time.UTC),
		Proposal:  domain.TopicRoutingProposal{SuggestedTopicName: "A", Vertical: "ai", Link: "https://example.org/1"},
	}
	second := domain.PendingProposal{
		ID:        "p2",
		CreatedAt: time.Date(2025, time.November, 10, 9, 0, 0, 0, time.UTC),
		Proposal:  domain.TopicRoutingProposal{SuggestedTopicName: "B", Vertical: "ai", Link: "https://example.org/2"},
	}

	if err := store.InsertPending(ctx, second); err != nil {
		t.Fatalf("InsertPending error: %v", err)
	}
	if err := store.InsertPending(ctx, first); err != nil {
		t.Fatalf("InsertPending error: %v", err)
	}
	if err := store.InsertPending(ctx, first); err == nil {
		t.Fatalf("expected error on duplicate pending id")
	}

	recs, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending error: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "p1" || recs[1].ID != "p2" {
		t.Fatalf("pending records not in creation order: %+v", recs)
	}

	if err := store.DeletePending(ctx, "p1"); err != nil {
		t.Fatalf("DeletePending error: %v", err)
	}
	rec, err := store.GetPending(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPending error: %v", err)
	}
	if rec != nil {
		t.Fatalf("deleted record still readable: %+v", rec)
	}
}
