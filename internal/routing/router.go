package routing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"TopicCurator/internal/ports"
)

const routingSystemPrompt = "You are a careful research router."

const routingPrompt = `You are a research router.

You will be given:
1) A list of topics (ALL from the same vertical)
2) A new article

Your task:
- Choose the SINGLE most relevant topic
- If none are clearly relevant, respond with NO_TOPIC

Rules:
- You MUST return at most one topic
- Be conservative: only choose if relevance is strong
- Do NOT invent topics
- Do NOT explain the article

Output format (follow exactly):

TOPIC_ID: <topic_id_or_NO_TOPIC>
REASON: <1 sentence justification>`

const noTopicMarker = "NO_TOPIC"

// Abstention reasons produced locally, as opposed to reasons quoted
// from the oracle.
const (
	reasonNoTopics      = "No topics available for this vertical."
	reasonInvalidFormat = "Invalid routing format."
	reasonInvalidTopic  = "Invalid topic selected."
)

// Router asks the oracle to place an article on at most one existing
// topic of its vertical.
type Router struct {
	topics ports.TopicStore
	oracle ports.Oracle
	logger *slog.Logger
}

// NewRouter wires the topic store and oracle.
func NewRouter(topics ports.TopicStore, oracle ports.Oracle, logger *slog.Logger) *Router {
	return &Router{topics: topics, oracle: oracle, logger: logger}
}

// Route returns the selected topic id, or "" with an abstention reason.
// Malformed oracle output and hallucinated ids both abstain; only
// transport and store failures surface as errors.
func (r *Router) Route(ctx context.Context, articleText, vertical string) (string, string, error) {
	topics, err := r.topics.TopicsByVertical(ctx, vertical)
	if err != nil {
		return "", "", fmt.Errorf("fetch topics: %w", err)
	}
	if len(topics) == 0 {
		return "", reasonNoTopics, nil
	}

	var list strings.Builder
	valid := make(map[string]bool, len(topics))
	for _, t := range topics {
		fmt.Fprintf(&list, "- %s: %s\n", t.ID, t.Name)
		valid[t.ID] = true
	}

	prompt := fmt.Sprintf("%s\n\nTopics:\n%s\nArticle:\n%s\n", routingPrompt, list.String(), articleText)

	raw, err := r.oracle.Invoke(ctx, routingSystemPrompt, prompt)
	if err != nil {
		return "", "", fmt.Errorf("routing completion: %w", err)
	}

	topicID, reason := parseRoutingResponse(raw, valid)
	if r.logger != nil && topicID == "" {
		r.logger.Debug("routing abstained", "vertical", vertical, "reason", reason)
	}
	return topicID, reason, nil
}

// parseRoutingResponse enforces the two-line TOPIC_ID/REASON grammar.
// An id outside the fetched set abstains: oracle ids are never trusted
// blindly.
func parseRoutingResponse(raw string, valid map[string]bool) (string, string) {
	var (
		topicID, reason    string
		haveID, haveReason bool
	)

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		switch {
		case strings.HasPrefix(line, "TOPIC_ID:"):
			topicID = strings.TrimSpace(strings.TrimPrefix(line, "TOPIC_ID:"))
			haveID = true
		case strings.HasPrefix(line, "REASON:"):
			reason = strings.TrimSpace(strings.TrimPrefix(line, "REASON:"))
			haveReason = true
		}
	}

	if !haveID || !haveReason {
		return "", reasonInvalidFormat
	}
	if topicID == noTopicMarker {
		return "", reason
	}
	if !valid[topicID] {
		return "", reasonInvalidTopic
	}
	return topicID, reason
}
