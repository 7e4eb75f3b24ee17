package domain

import (
	"fmt"
	"time"
)

// ProposalKind discriminates the proposal variants.
type ProposalKind string

const (
	KindTopicRouting ProposalKind = "topic_routing"
	KindMemoryUpdate ProposalKind = "memory_update"
)

// Proposal is a suggested mutation awaiting human review. Variants only
// describe themselves; applying the mutation is the review manager's job.
type Proposal interface {
	Kind() ProposalKind
	Summary() string
	LogPayload() map[string]string
	SourceLink() string
}

// TopicRoutingProposal suggests creating a new topic in a vertical.
type TopicRoutingProposal struct {
	ArticleText        string
	SuggestedTopicName string
	Vertical           string
	ConfidenceReason   string
	Link               string
}

func (p TopicRoutingProposal) Kind() ProposalKind { return KindTopicRouting }

func (p TopicRoutingProposal) SourceLink() string { return p.Link }

func (p TopicRoutingProposal) Summary() string {
	return fmt.Sprintf(
		"TOPIC ROUTING PROPOSAL\nSuggested Topic: %s\nVertical: %s\n\nWHY:\n%s\n",
		p.SuggestedTopicName, p.Vertical, p.ConfidenceReason)
}

// LogPayload flattens the proposal for pending and audit tables. The
// article text is deliberately excluded; only review metadata is stored.
func (p TopicRoutingProposal) LogPayload() map[string]string {
	return map[string]string{
		"proposal_type":        string(KindTopicRouting),
		"suggested_topic_name": p.SuggestedTopicName,
		"vertical":             p.Vertical,
		"confidence_reason":    p.ConfidenceReason,
		"source_link":          p.Link,
	}
}

// MemoryUpdateProposal suggests rewriting one belief section of an
// existing topic memory.
type MemoryUpdateProposal struct {
	TopicID        string
	Section        Section
	OldBelief      string
	NewBelief      string
	WhyThisMatters string
	Link           string
}

func (p MemoryUpdateProposal) Kind() ProposalKind { return KindMemoryUpdate }

func (p MemoryUpdateProposal) SourceLink() string { return p.Link }

func (p MemoryUpdateProposal) Summary() string {
	return fmt.Sprintf(
		"MEMORY UPDATE PROPOSAL\nTopic ID: %s\nSection: %s\n\nOLD:\n%s\n\nNEW:\n%s\n\nWHY:\n%s\n",
		p.TopicID, p.Section, p.OldBelief, p.NewBelief, p.WhyThisMatters)
}

func (p MemoryUpdateProposal) LogPayload() map[string]string {
	return map[string]string{
		"proposal_type":    string(KindMemoryUpdate),
		"topic_id":         p.TopicID,
		"schema_section":   string(p.Section),
		"old_belief":       p.OldBelief,
		"new_belief":       p.NewBelief,
		"why_this_matters": p.WhyThisMatters,
		"source_link":      p.Link,
	}
}

// ProposalFromPayload rebuilds a proposal from a stored flat payload.
func ProposalFromPayload(payload map[string]string) (Proposal, error) {
	switch ProposalKind(payload["proposal_type"]) {
	case KindTopicRouting:
		return TopicRoutingProposal{
			SuggestedTopicName: payload["suggested_topic_name"],
			Vertical:           payload["vertical"],
			ConfidenceReason:   payload["confidence_reason"],
			Link:               payload["source_link"],
		}, nil
	case KindMemoryUpdate:
		section, err := ParseSection(payload["schema_section"])
		if err != nil {
			return nil, fmt.Errorf("rebuild memory update: %w", err)
		}
		return MemoryUpdateProposal{
			TopicID:        payload["topic_id"],
			Section:        section,
			OldBelief:      payload["old_belief"],
			NewBelief:      payload["new_belief"],
			WhyThisMatters: payload["why_this_matters"],
			Link:           payload["source_link"],
		}, nil
	}
	return nil, fmt.Errorf("unknown proposal_type %q", payload["proposal_type"])
}

// RejectedLogPayload derives the audit payload for a rejected proposal:
// the proposed belief is renamed to distinguish it from ever-applied
// text, and empty fields are dropped.
func RejectedLogPayload(p Proposal, reason string) map[string]string {
	base := p.LogPayload()
	payload := make(map[string]string, len(base)+1)
	for key, value := range base {
		if value == "" {
			continue
		}
		if key == "new_belief" {
			key = "proposed_belief"
		}
		payload[key] = value
	}
	payload["rejection_reason"] = reason
	return payload
}

// PendingProposal is a stored, not-yet-reviewed proposal. The id is
// generated client-side before insertion.
type PendingProposal struct {
	ID        string
	CreatedAt time.Time
	Proposal  Proposal
}
