package routing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"TopicCurator/internal/domain"
)

type scriptedOracle struct {
	response string
	err      error
	calls    int
	lastUser string
}

func (o *scriptedOracle) Invoke(_ context.Context, _, user string) (string, error) {
	o.calls++
	o.lastUser = user
	if o.err != nil {
		return "", o.err
	}
	return o.response, nil
}

type staticTopics struct {
	topics []domain.Topic
	err    error
}

func (s *staticTopics) TopicsByVertical(context.Context, string) ([]domain.Topic, error) {
	return s.topics, s.err
}

func (s *staticTopics) CreateTopic(context.Context, domain.Topic) error {
	return nil
}

var aiTopics = []domain.Topic{
	{ID: "t1", Name: "Sparse Attention", Vertical: "ai"},
	{ID: "t2", Name: "Distillation", Vertical: "ai"},
}

func TestRouteEmptyVertical(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{}
	r := NewRouter(&staticTopics{}, oracle, nil)

	id, reason, err := r.Route(context.Background(), "article", "ai")
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if id != "" {
		t.Fatalf("expected abstention, got %q", id)
	}
	if reason != "No topics available for this vertical." {
		t.Fatalf("unexpected reason: %q", reason)
	}
	if oracle.calls != 0 {
		t.Fatalf("oracle must not be consulted for an empty vertical")
	}
}

func TestRouteValidSelection(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{response: "TOPIC_ID: t2\nREASON: Directly about distillation."}
	r := NewRouter(&staticTopics{topics: aiTopics}, oracle, nil)

	id, reason, err := r.Route(context.Background(), "article", "ai")
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if id != "t2" {
		t.Fatalf("unexpected topic id: %q", id)
	}
	if reason != "Directly about distillation." {
		t.Fatalf("unexpected reason: %q", reason)
	}
	if !strings.Contains(oracle.lastUser, "- t1: Sparse Attention") {
		t.Fatalf("prompt missing topic list:\n%s", oracle.lastUser)
	}
}

func TestRouteNoTopicVersusMalformed(t *testing.T) {
	t.Parallel()

	// Both abstain, but the reasons must be distinguishable.
	oracle := &scriptedOracle{response: "TOPIC_ID: NO_TOPIC\nREASON: Nothing is clearly relevant."}
	r := NewRouter(&staticTopics{topics: aiTopics}, oracle, nil)

	id, reason, err := r.Route(context.Background(), "article", "ai")
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if id != "" || reason != "Nothing is clearly relevant." {
		t.Fatalf("unexpected NO_TOPIC result: %q / %q", id, reason)
	}

	oracle.response = "The best match is probably t1."
	id, reason, err = r.Route(context.Background(), "article", "ai")
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if id != "" || reason != "Invalid routing format." {
		t.Fatalf("unexpected malformed result: %q / %q", id, reason)
	}
}

func TestRouteRejectsHallucinatedID(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{response: "TOPIC_ID: t99\nREASON: Seems right."}
	r := NewRouter(&staticTopics{topics: aiTopics}, oracle, nil)

	id, reason, err := r.Route(context.Background(), "article", "ai")
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if id != "" {
		t.Fatalf("hallucinated id must never be returned, got %q", id)
	}
	if reason != "Invalid topic selected." {
		t.Fatalf("unexpected reason: %q", reason)
	}
}

func TestRouteTransportError(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{err: errors.New("bad gateway")}
	r := NewRouter(&staticTopics{topics: aiTopics}, oracle, nil)

	if _, _, err := r.Route(context.Background(), "article", "ai"); err == nil {
		t.Fatalf("expected transport error to propagate")
	}
}

func TestProposeNewTopic(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{response: "DECISION: NEW_TOPIC\nTOPIC_NAME: Mixture Routing\nREASON: No existing topic covers this."}
	p := NewProposer(oracle, nil)

	proposal, err := p.Propose(context.Background(), "article", "ai",
		[]string{"Sparse Attention"}, "https://example.org/a")
	if err != nil {
		t.Fatalf("Propose error: %v", err)
	}
	if proposal == nil {
		t.Fatalf("expected a proposal")
	}
	if proposal.SuggestedTopicName != "Mixture Routing" {
		t.Fatalf("unexpected topic name: %q", proposal.SuggestedTopicName)
	}
	if proposal.Vertical != "ai" || proposal.Link != "https://example.org/a" {
		t.Fatalf("proposal fields not carried through: %+v", proposal)
	}
}

func TestProposeDeclines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
	}{
		{"explicit no", "DECISION: NO_NEW_TOPIC\nREASON: Fits an existing topic."},
		{"missing topic name", "DECISION: NEW_TOPIC\nREASON: Worth tracking."},
		{"missing reason", "DECISION: NEW_TOPIC\nTOPIC_NAME: Something"},
		{"missing decision", "TOPIC_NAME: Something\nREASON: Worth tracking."},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			oracle := &scriptedOracle{response: tt.response}
			p := NewProposer(oracle, nil)

			proposal, err := p.Propose(context.Background(), "article", "ai", nil, "https://example.org/a")
			if err != nil {
				t.Fatalf("Propose error: %v", err)
			}
			if proposal != nil {
				t.Fatalf("expected silent abstention, got %+v", proposal)
			}
			if oracle.calls != 1 {
				t.Fatalf("propose must not retry, got %d calls", oracle.calls)
			}
		})
	}
}
