package routing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"TopicCurator/internal/domain"
	"TopicCurator/internal/ports"
)

const proposerSystemPrompt = "You are a careful research organizer."

const newTopicPrompt = `You are organizing research topics within a single vertical.

Vertical:
%s

Existing topics in this vertical:
%s

New article:
%s

Task:
- Decide whether this article clearly belongs to ONE existing topic
- If yes, respond with NO_NEW_TOPIC
- If not, propose ONE new topic name

Rules:
- Choose at most one topic
- Be conservative: only propose a new topic if necessary
- Do NOT propose multiple topics

Output format (follow exactly):

DECISION: <NO_NEW_TOPIC or NEW_TOPIC>
TOPIC_NAME: <only if NEW_TOPIC>
REASON: <1-2 sentence justification>`

const (
	decisionNewTopic   = "NEW_TOPIC"
	decisionNoNewTopic = "NO_NEW_TOPIC"
)

// Proposer asks the oracle whether an unrouted article warrants a new
// topic in its vertical.
type Proposer struct {
	oracle ports.Oracle
	logger *slog.Logger
}

// NewProposer wires the oracle.
func NewProposer(oracle ports.Oracle, logger *slog.Logger) *Proposer {
	return &Proposer{oracle: oracle, logger: logger}
}

// Propose returns a topic routing proposal, or nil when the oracle
// declines or answers in an unusable shape. Any missing field is a
// silent abstention, never an error.
func (p *Proposer) Propose(ctx context.Context, articleText, vertical string, existingNames []string, sourceLink string) (*domain.TopicRoutingProposal, error) {
	prompt := fmt.Sprintf(newTopicPrompt, vertical, strings.Join(existingNames, ", "), articleText)

	raw, err := p.oracle.Invoke(ctx, proposerSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("new topic completion: %w", err)
	}

	var decision, topicName, reason string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		switch {
		case strings.HasPrefix(line, "DECISION:"):
			decision = strings.TrimSpace(strings.TrimPrefix(line, "DECISION:"))
		case strings.HasPrefix(line, "TOPIC_NAME:"):
			topicName = strings.TrimSpace(strings.TrimPrefix(line, "TOPIC_NAME:"))
		case strings.HasPrefix(line, "REASON:"):
			reason = strings.TrimSpace(strings.TrimPrefix(line, "REASON:"))
		}
	}

	if decision == decisionNewTopic && topicName != "" && reason != "" {
		return &domain.TopicRoutingProposal{
			ArticleText:        articleText,
			SuggestedTopicName: topicName,
			Vertical:           vertical,
			ConfidenceReason:   reason,
			Link:               sourceLink,
		}, nil
	}

	if p.logger != nil && decision != decisionNoNewTopic {
		p.logger.Debug("topic proposal abstained", "vertical", vertical, "decision", decision)
	}
	return nil, nil
}
